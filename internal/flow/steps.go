// Package flow implements the session flow engine: a fixed directed graph
// of steps driving the simulated mobile-banking interaction.
package flow

import (
	"github.com/rpatil/bankflow/internal/validate"
	"github.com/rpatil/bankflow/pkg/api"
)

// expandedAlertKey is the step-local form slot holding the currently
// expanded fraud alert on the FraudAlert step.
const expandedAlertKey = "expandedAlert"

// Settings are the tunables of the flow. Zero values fall back to the
// reference behavior.
type Settings struct {
	MaxPINAttempts int
	ReferencePIN   string
	Latencies      api.Latencies
}

// DefaultSettings returns the reference configuration: three PIN attempts
// against PIN "1234" with the stock per-operation latencies.
func DefaultSettings() Settings {
	return Settings{
		MaxPINAttempts: 3,
		ReferencePIN:   "1234",
		Latencies:      api.DefaultLatencies(),
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if s.MaxPINAttempts <= 0 {
		s.MaxPINAttempts = def.MaxPINAttempts
	}
	if s.ReferencePIN == "" {
		s.ReferencePIN = def.ReferencePIN
	}
	if s.Latencies == (api.Latencies{}) {
		s.Latencies = def.Latencies
	}
	return s
}

// StepDefinition describes one node of the flow graph: the form fields it
// owns, the simulated operation Submit triggers, its back edge, and the
// transition applied to the operation's outcome.
type StepDefinition struct {
	ID       api.StepID
	Fields   []string
	Op       api.OpKind // zero means the transition is local-only
	Back     api.StepID // zero means no predecessor (GoBack is a no-op)
	Terminal bool

	// OnResult inspects the outcome, applies step side effects on the
	// session (committing carried values, counting PIN attempts) and
	// names the next step. Returning the current step means "stay".
	OnResult func(sess *api.Session, out api.Outcome, set Settings) api.StepID
}

// stepTable is the full flow graph. Hoisting every transition here keeps
// the graph inspectable and testable without driving any UI.
var stepTable = map[api.StepID]StepDefinition{
	api.StepLogin: {
		ID:     api.StepLogin,
		Fields: []string{api.FieldLanguage, api.FieldPhone},
		Op:     api.OpSendOTP,
		OnResult: func(sess *api.Session, out api.Outcome, set Settings) api.StepID {
			sess.Language = sess.Form[api.FieldLanguage]
			sess.Phone = sess.Form[api.FieldPhone]
			return api.StepOTPEntry
		},
	},

	api.StepOTPEntry: {
		ID:     api.StepOTPEntry,
		Fields: []string{api.FieldOTP},
		Op:     api.OpVerifyOTP,
		Back:   api.StepLogin,
		OnResult: func(sess *api.Session, out api.Outcome, set Settings) api.StepID {
			return api.StepAccountSelection
		},
	},

	api.StepAccountSelection: {
		ID:     api.StepAccountSelection,
		Fields: []string{api.FieldAccount},
		Back:   api.StepLogin,
		OnResult: func(sess *api.Session, out api.Outcome, set Settings) api.StepID {
			sess.AccountID = sess.Form[api.FieldAccount]
			return api.StepPINEntry
		},
	},

	api.StepPINEntry: {
		ID:     api.StepPINEntry,
		Fields: []string{api.FieldPIN},
		Op:     api.OpVerifyPIN,
		Back:   api.StepAccountSelection,
		OnResult: func(sess *api.Session, out api.Outcome, set Settings) api.StepID {
			if out.OK() {
				sess.PINAttempts = 0
				return api.StepMainMenu
			}
			sess.PINAttempts++
			delete(sess.Form, api.FieldPIN)
			if sess.PINAttempts >= set.MaxPINAttempts {
				return api.StepLocked
			}
			return api.StepPINEntry
		},
	},

	api.StepMainMenu: {
		ID:     api.StepMainMenu,
		Fields: []string{api.FieldService},
		Back:   api.StepPINEntry,
		OnResult: func(sess *api.Session, out api.Outcome, set Settings) api.StepID {
			switch sess.Form[api.FieldService] {
			case api.ServiceCheckBalance:
				return api.StepCheckBalance
			case api.ServiceSendMoney:
				return api.StepSendMoneyDetails
			case api.ServiceFraudAlert:
				return api.StepFraudAlert
			}
			return api.StepMainMenu
		},
	},

	api.StepCheckBalance: {
		ID:   api.StepCheckBalance,
		Op:   api.OpFetchBalance,
		Back: api.StepMainMenu,
		OnResult: func(sess *api.Session, out api.Outcome, set Settings) api.StepID {
			// Refresh reloads in place.
			return api.StepCheckBalance
		},
	},

	api.StepSendMoneyDetails: {
		ID:     api.StepSendMoneyDetails,
		Fields: []string{api.FieldReceiverName, api.FieldReceiverPhone, api.FieldAmount, api.FieldRemarks},
		Back:   api.StepMainMenu,
		OnResult: func(sess *api.Session, out api.Outcome, set Settings) api.StepID {
			minor, err := validate.ParseAmountMinor(sess.Form[api.FieldAmount])
			if err != nil {
				// Validation ran before OnResult, so this is unreachable
				// for well-formed submits; stay put if it happens.
				return api.StepSendMoneyDetails
			}
			sess.Draft = &api.TransferDraft{
				ReceiverName:  sess.Form[api.FieldReceiverName],
				ReceiverPhone: sess.Form[api.FieldReceiverPhone],
				AmountMinor:   minor,
				Remarks:       sess.Form[api.FieldRemarks],
			}
			return api.StepSendMoneyConfirm
		},
	},

	api.StepSendMoneyConfirm: {
		ID:   api.StepSendMoneyConfirm,
		Op:   api.OpSubmitTransfer,
		Back: api.StepSendMoneyDetails,
		OnResult: func(sess *api.Session, out api.Outcome, set Settings) api.StepID {
			if receipt, ok := out.Data.(api.TransferReceipt); ok {
				sess.LastTransactionID = receipt.TransactionID
			}
			return api.StepSendMoneyComplete
		},
	},

	api.StepSendMoneyComplete: {
		ID:     api.StepSendMoneyComplete,
		Fields: []string{api.FieldNext},
		OnResult: func(sess *api.Session, out api.Outcome, set Settings) api.StepID {
			next := sess.Form[api.FieldNext]
			sess.Draft = nil
			if next == api.NextAnotherTransfer {
				return api.StepSendMoneyDetails
			}
			return api.StepMainMenu
		},
	},

	api.StepFraudAlert: {
		ID:     api.StepFraudAlert,
		Fields: []string{api.FieldAlert, expandedAlertKey},
		Back:   api.StepMainMenu,
		OnResult: func(sess *api.Session, out api.Outcome, set Settings) api.StepID {
			// Local toggle of the expanded detail view.
			if id := sess.Form[api.FieldAlert]; id != "" {
				if sess.Form[expandedAlertKey] == id {
					delete(sess.Form, expandedAlertKey)
				} else {
					sess.Form[expandedAlertKey] = id
				}
			}
			return api.StepFraudAlert
		},
	},

	api.StepLocked: {
		ID:       api.StepLocked,
		Terminal: true,
	},

	api.StepNotFound: {
		ID:       api.StepNotFound,
		Terminal: true,
	},
}

// inSendMoneyFlow reports whether step belongs to the Send Money
// sub-flow, the only region where a transfer draft may live.
func inSendMoneyFlow(step api.StepID) bool {
	switch step {
	case api.StepSendMoneyDetails, api.StepSendMoneyConfirm, api.StepSendMoneyComplete:
		return true
	}
	return false
}

// Definition exposes a step's definition, mainly for tests that assert
// over the shape of the graph.
func Definition(id api.StepID) (StepDefinition, bool) {
	def, ok := stepTable[id]
	return def, ok
}
