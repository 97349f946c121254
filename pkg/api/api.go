package api

import (
	"context"
	"errors"
	"time"
)

// StepID names one state in the session flow graph. Each step corresponds
// to one screen's logic in the host application.
type StepID string

const (
	StepLogin             StepID = "LOGIN"
	StepOTPEntry          StepID = "OTP_ENTRY"
	StepAccountSelection  StepID = "ACCOUNT_SELECTION"
	StepPINEntry          StepID = "PIN_ENTRY"
	StepMainMenu          StepID = "MAIN_MENU"
	StepCheckBalance      StepID = "CHECK_BALANCE"
	StepSendMoneyDetails  StepID = "SEND_MONEY_DETAILS"
	StepSendMoneyConfirm  StepID = "SEND_MONEY_CONFIRM"
	StepSendMoneyComplete StepID = "SEND_MONEY_COMPLETE"
	StepFraudAlert        StepID = "FRAUD_ALERT"
	StepLocked            StepID = "LOCKED"
	StepNotFound          StepID = "NOT_FOUND"
)

// Form field names understood by UpdateField and the step validators.
const (
	FieldLanguage      = "language"
	FieldPhone         = "phone"
	FieldOTP           = "otp"
	FieldAccount       = "account"
	FieldPIN           = "pin"
	FieldService       = "service"
	FieldReceiverName  = "receiverName"
	FieldReceiverPhone = "receiverPhone"
	FieldAmount        = "amount"
	FieldRemarks       = "remarks"
	FieldAlert         = "alert"
	FieldNext          = "next"
)

// Values accepted in FieldService on the main menu.
const (
	ServiceCheckBalance = "check-balance"
	ServiceSendMoney    = "send-money"
	ServiceFraudAlert   = "fraud-alert"
)

// Values accepted in FieldNext on the transfer-complete step.
const (
	NextAnotherTransfer = "again"
	NextMainMenu        = "menu"
)

// Session is the single live instance of flow state for one user
// interaction. It is the unit stored by a SessionStore; everything in it
// is serializable.
type Session struct {
	ID   string `json:"id"`
	Step StepID `json:"step"`

	// Form holds the active step's field values, already normalized.
	// It is reset whenever the session moves to a different step.
	Form map[string]string `json:"form"`

	PINAttempts int `json:"pinAttempts"`

	// Values committed by earlier steps and carried for the rest of the
	// session (phone from Login, account from AccountSelection, ...).
	Language  string `json:"language,omitempty"`
	Phone     string `json:"phone,omitempty"`
	AccountID string `json:"accountId,omitempty"`

	// Draft is alive only during the Send Money sub-flow.
	Draft *TransferDraft `json:"draft,omitempty"`

	LastTransactionID string    `json:"lastTransactionId,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Form = make(map[string]string, len(s.Form))
	for k, v := range s.Form {
		cp.Form[k] = v
	}
	if s.Draft != nil {
		d := *s.Draft
		cp.Draft = &d
	}
	return &cp
}

// TransferDraft captures the Send Money details between the details and
// confirmation screens. Amount is held in minor units (paise).
type TransferDraft struct {
	ReceiverName  string `json:"receiverName"`
	ReceiverPhone string `json:"receiverPhone"`
	AmountMinor   int64  `json:"amountMinor"`
	Remarks       string `json:"remarks,omitempty"`
}

// OpKind identifies a simulated remote operation.
type OpKind string

const (
	OpSendOTP        OpKind = "SEND_OTP"
	OpVerifyOTP      OpKind = "VERIFY_OTP"
	OpVerifyPIN      OpKind = "VERIFY_PIN"
	OpFetchBalance   OpKind = "FETCH_BALANCE"
	OpSubmitTransfer OpKind = "SUBMIT_TRANSFER"
)

// FailureReason classifies a business-level operation failure.
type FailureReason string

// ReasonWrongPIN is the only negative branch in the simulated gateway:
// PIN verification against the reference value failed.
const ReasonWrongPIN FailureReason = "WRONG_PIN"

// Outcome is the result of a simulated remote operation.
type Outcome struct {
	Reason FailureReason `json:"reason,omitempty"`
	Data   any           `json:"data,omitempty"`
	ok     bool
}

// Success returns a successful Outcome carrying data.
func Success(data any) Outcome {
	return Outcome{ok: true, Data: data}
}

// Failure returns a failed Outcome with the given reason.
func Failure(reason FailureReason) Outcome {
	return Outcome{Reason: reason}
}

// OK reports whether the operation resolved successfully.
func (o Outcome) OK() bool { return o.ok }

// ValidationError reports a field that failed its step validator.
// It is local and recoverable: the session stays on its current step and
// no remote operation is attempted.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

var (
	// ErrSessionNotFound is returned when a session ID is unknown.
	ErrSessionNotFound = errors.New("session not found")

	// ErrOperationInFlight is returned when a mutating call arrives while
	// a simulated remote operation is still pending on the same session.
	// Concurrent submits are rejected, not queued.
	ErrOperationInFlight = errors.New("operation already in flight")

	// ErrSessionLocked is returned for mutating calls on a session that
	// reached the PIN lockout terminal. Only Reset clears it.
	ErrSessionLocked = errors.New("session locked")

	// ErrTerminalStep is returned for Submit on a terminal step that
	// offers no transitions.
	ErrTerminalStep = errors.New("step is terminal")
)

// Account is one mock bank account linked to the phone number.
type Account struct {
	ID             string `json:"id"`
	BankName       string `json:"bankName"`
	Number         string `json:"number"`
	Type           string `json:"type"`
	BalanceMinor   int64  `json:"balanceMinor"`
	AvailableMinor int64  `json:"availableMinor"`
}

// Transaction is one entry in the mock recent-activity list.
type Transaction struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"` // "credit" or "debit"
	AmountMinor int64  `json:"amountMinor"`
	Description string `json:"description"`
	When        string `json:"when"`
}

// BalanceSnapshot is the payload shown on the Check Balance step.
type BalanceSnapshot struct {
	Account Account       `json:"account"`
	Recent  []Transaction `json:"recent"`
}

// FraudAlert is one mock security notification.
type FraudAlert struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Location    string            `json:"location"`
	When        string            `json:"when"`
	Severity    string            `json:"severity"` // high, medium, low
	Status      string            `json:"status"`   // active, reviewed, resolved
	Details     map[string]string `json:"details"`
}

// Language is one entry of the login language selector.
type Language struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// TransferReceipt is the payload of a successful transfer submission.
type TransferReceipt struct {
	TransactionID string        `json:"transactionId"`
	Draft         TransferDraft `json:"draft"`
}

// View is the immutable per-render snapshot of a session. Hosts read it,
// render, and call back into the engine; they never mutate engine state
// directly.
type View struct {
	SessionID         string            `json:"sessionId"`
	Step              StepID            `json:"step"`
	Form              map[string]string `json:"form"`
	PINAttempts       int               `json:"pinAttempts"`
	AttemptsRemaining int               `json:"attemptsRemaining"`
	Draft             *TransferDraft    `json:"draft,omitempty"`
	LastTransactionID string            `json:"lastTransactionId,omitempty"`
	Terminal          bool              `json:"terminal"`

	// Step payloads, populated only for the step that renders them.
	Languages       []Language       `json:"languages,omitempty"`
	Accounts        []Account        `json:"accounts,omitempty"`
	Balance         *BalanceSnapshot `json:"balance,omitempty"`
	Alerts          []FraudAlert     `json:"alerts,omitempty"`
	ExpandedAlertID string           `json:"expandedAlertId,omitempty"`
}

// Engine drives sessions through the flow graph. Implementations process
// one mutating call per session at a time; a second Submit (or GoBack,
// Reset, UpdateField) while a simulated operation is pending fails with
// ErrOperationInFlight. View is always allowed.
type Engine interface {
	// StartSession creates a new session at the Login step.
	StartSession(ctx context.Context) (*View, error)

	// View returns a read-only snapshot for rendering.
	View(ctx context.Context, sessionID string) (*View, error)

	// UpdateField normalizes raw input (digit stripping and length
	// capping for phone/OTP/PIN, digits and a single dot for amounts)
	// and stores it into the active step's form. Bad characters are
	// filtered, never rejected.
	UpdateField(ctx context.Context, sessionID, field, raw string) (*View, error)

	// Submit validates the current step and, when valid, runs the step's
	// simulated remote operation and applies its transition. An invalid
	// form returns a *ValidationError and leaves the step unchanged.
	Submit(ctx context.Context, sessionID string) (*View, error)

	// GoBack moves to the step's declared predecessor, discarding the
	// current step's uncommitted form state. On Login and on terminal
	// steps it is a no-op; it never fails for flow-graph reasons.
	GoBack(ctx context.Context, sessionID string) (*View, error)

	// Reset returns the session to its initial state. It is the only
	// way out of the Locked and NotFound terminals.
	Reset(ctx context.Context, sessionID string) (*View, error)

	// Navigate records an explicit route jump, as driven by a host's
	// routing table. Any step other than the session's current one
	// resolves to the NotFound terminal.
	Navigate(ctx context.Context, sessionID string, step StepID) (*View, error)
}
