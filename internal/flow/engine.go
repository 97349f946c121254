package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rpatil/bankflow/internal/bank"
	"github.com/rpatil/bankflow/internal/persistence"
	"github.com/rpatil/bankflow/internal/validate"
	"github.com/rpatil/bankflow/pkg/api"
)

// Config describes how to construct an engine.
type Config struct {
	Store    persistence.SessionStore
	Observer api.Observer
	Clock    api.Clock
	Settings Settings
}

// engineImpl is the synchronous, in-process flow engine. It processes one
// mutating call per session at a time: while a simulated remote operation
// is in flight, further mutating calls on that session are rejected with
// api.ErrOperationInFlight.
type engineImpl struct {
	store    persistence.SessionStore
	dir      *bank.Directory
	gateway  *bank.Gateway
	observer api.Observer
	set      Settings

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewEngine returns an Engine using the given configuration. Missing
// pieces fall back to defaults: in-memory store, no-op observer, real
// timers, reference settings.
func NewEngine(cfg Config) api.Engine {
	store := cfg.Store
	if store == nil {
		store = persistence.NewInMemoryStore()
	}
	obs := cfg.Observer
	if obs == nil {
		obs = api.NoopObserver{}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = api.SystemClock()
	}
	set := cfg.Settings.withDefaults()

	dir := bank.NewDirectory()
	return &engineImpl{
		store:    store,
		dir:      dir,
		gateway:  bank.NewGateway(dir, clock, set.Latencies, set.ReferencePIN),
		observer: obs,
		set:      set,
		inflight: make(map[string]struct{}),
	}
}

func (e *engineImpl) StartSession(ctx context.Context) (*api.View, error) {
	sess := &api.Session{
		ID:        uuid.NewString(),
		Step:      api.StepLogin,
		Form:      make(map[string]string),
		UpdatedAt: time.Now().UTC(),
	}

	if err := e.store.SaveSession(sess); err != nil {
		return nil, err
	}

	e.observer.OnSessionStart(ctx, sess)
	return e.buildView(sess), nil
}

func (e *engineImpl) View(ctx context.Context, sessionID string) (*api.View, error) {
	sess, err := e.load(sessionID)
	if err != nil {
		return nil, err
	}
	return e.buildView(sess), nil
}

func (e *engineImpl) UpdateField(ctx context.Context, sessionID, field, raw string) (*api.View, error) {
	if err := e.begin(sessionID); err != nil {
		return nil, err
	}
	defer e.end(sessionID)

	sess, err := e.load(sessionID)
	if err != nil {
		return nil, err
	}
	if err := terminalError(sess.Step); err != nil {
		return e.buildView(sess), err
	}

	sess.Form[field] = validate.NormalizeField(field, raw)
	sess.UpdatedAt = time.Now().UTC()

	if err := e.store.UpdateSession(sess); err != nil {
		return nil, err
	}
	return e.buildView(sess), nil
}

func (e *engineImpl) Submit(ctx context.Context, sessionID string) (*api.View, error) {
	if err := e.begin(sessionID); err != nil {
		return nil, err
	}
	defer e.end(sessionID)

	sess, err := e.load(sessionID)
	if err != nil {
		return nil, err
	}

	def, ok := stepTable[sess.Step]
	if !ok {
		return e.buildView(sess), fmt.Errorf("undefined step: %s", sess.Step)
	}
	if err := terminalError(sess.Step); err != nil {
		return e.buildView(sess), err
	}

	if verr := validate.Step(sess.Step, sess.Form); verr != nil {
		e.observer.OnValidationFailed(ctx, sess, verr)
		return e.buildView(sess), verr
	}
	if verr := e.checkReferences(sess); verr != nil {
		e.observer.OnValidationFailed(ctx, sess, verr)
		return e.buildView(sess), verr
	}

	out := api.Success(nil)
	if def.Op != "" {
		e.observer.OnOperationStart(ctx, sess, def.Op)
		start := time.Now()
		out, err = e.gateway.Invoke(ctx, def.Op, sess)
		if err != nil {
			// Cancelled mid-delay: the session stays on its step.
			return e.buildView(sess), err
		}
		e.observer.OnOperationCompleted(ctx, sess, def.Op, out, time.Since(start))
	}

	next := def.OnResult(sess, out, e.set)
	e.enter(ctx, sess, next)
	sess.UpdatedAt = time.Now().UTC()

	if err := e.store.UpdateSession(sess); err != nil {
		return nil, err
	}
	return e.buildView(sess), nil
}

func (e *engineImpl) GoBack(ctx context.Context, sessionID string) (*api.View, error) {
	if err := e.begin(sessionID); err != nil {
		return nil, err
	}
	defer e.end(sessionID)

	sess, err := e.load(sessionID)
	if err != nil {
		return nil, err
	}

	def := stepTable[sess.Step]
	if def.Terminal || def.Back == "" {
		// No predecessor: going back is a no-op, never an error.
		return e.buildView(sess), nil
	}

	e.enter(ctx, sess, def.Back)
	sess.UpdatedAt = time.Now().UTC()

	if err := e.store.UpdateSession(sess); err != nil {
		return nil, err
	}
	return e.buildView(sess), nil
}

func (e *engineImpl) Reset(ctx context.Context, sessionID string) (*api.View, error) {
	if err := e.begin(sessionID); err != nil {
		return nil, err
	}
	defer e.end(sessionID)

	sess, err := e.load(sessionID)
	if err != nil {
		return nil, err
	}

	from := sess.Step
	sess.Step = api.StepLogin
	sess.Form = make(map[string]string)
	sess.PINAttempts = 0
	sess.Language = ""
	sess.Phone = ""
	sess.AccountID = ""
	sess.Draft = nil
	sess.LastTransactionID = ""
	sess.UpdatedAt = time.Now().UTC()

	if err := e.store.UpdateSession(sess); err != nil {
		return nil, err
	}

	e.observer.OnSessionReset(ctx, sess)
	if from != api.StepLogin {
		e.observer.OnStepEnter(ctx, sess, from, api.StepLogin)
	}
	return e.buildView(sess), nil
}

func (e *engineImpl) Navigate(ctx context.Context, sessionID string, step api.StepID) (*api.View, error) {
	if err := e.begin(sessionID); err != nil {
		return nil, err
	}
	defer e.end(sessionID)

	sess, err := e.load(sessionID)
	if err != nil {
		return nil, err
	}

	if step == sess.Step {
		return e.buildView(sess), nil
	}

	// Any route the engine did not drive the session to resolves to the
	// NotFound terminal; Reset is the way back.
	e.enter(ctx, sess, api.StepNotFound)
	sess.UpdatedAt = time.Now().UTC()

	if err := e.store.UpdateSession(sess); err != nil {
		return nil, err
	}
	return e.buildView(sess), nil
}

// begin marks a session as busy. It fails when a prior mutating call,
// typically a Submit waiting out a simulated delay, has not finished.
func (e *engineImpl) begin(sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, busy := e.inflight[sessionID]; busy {
		return api.ErrOperationInFlight
	}
	e.inflight[sessionID] = struct{}{}
	return nil
}

func (e *engineImpl) end(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, sessionID)
}

func (e *engineImpl) load(sessionID string) (*api.Session, error) {
	sess, err := e.store.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, persistence.ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", api.ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	return sess, nil
}

// enter moves the session to the given step. Moving to a different step
// resets the form to that step's local state, pre-seeded from carried
// session values so that going back re-displays what was entered.
func (e *engineImpl) enter(ctx context.Context, sess *api.Session, to api.StepID) {
	from := sess.Step
	if to == from {
		return
	}

	sess.Step = to
	sess.Form = make(map[string]string)

	// The draft lives only inside the Send Money sub-flow. Leaving it for
	// any other step, by going back or navigating away, cancels the
	// transfer and discards the draft.
	if inSendMoneyFlow(from) && !inSendMoneyFlow(to) {
		sess.Draft = nil
	}

	switch to {
	case api.StepLogin:
		if sess.Phone != "" {
			sess.Form[api.FieldPhone] = sess.Phone
		}
		if sess.Language != "" {
			sess.Form[api.FieldLanguage] = sess.Language
		}
	case api.StepAccountSelection:
		if sess.AccountID != "" {
			sess.Form[api.FieldAccount] = sess.AccountID
		}
	case api.StepSendMoneyDetails:
		if sess.Draft != nil {
			sess.Form[api.FieldReceiverName] = sess.Draft.ReceiverName
			sess.Form[api.FieldReceiverPhone] = sess.Draft.ReceiverPhone
			sess.Form[api.FieldAmount] = validate.FormatAmount(sess.Draft.AmountMinor)
			if sess.Draft.Remarks != "" {
				sess.Form[api.FieldRemarks] = sess.Draft.Remarks
			}
		}
	}

	e.observer.OnStepEnter(ctx, sess, from, to)
	if to == api.StepLocked {
		e.observer.OnSessionLocked(ctx, sess)
	}
}

// checkReferences covers the checks that need the directory and therefore
// cannot live in the pure validators.
func (e *engineImpl) checkReferences(sess *api.Session) *api.ValidationError {
	if sess.Step == api.StepAccountSelection {
		if _, ok := e.dir.Account(sess.Form[api.FieldAccount]); !ok {
			return &api.ValidationError{Field: api.FieldAccount, Reason: "unknown account"}
		}
	}
	return nil
}

func terminalError(step api.StepID) error {
	switch step {
	case api.StepLocked:
		return api.ErrSessionLocked
	case api.StepNotFound:
		return api.ErrTerminalStep
	}
	return nil
}

func (e *engineImpl) buildView(sess *api.Session) *api.View {
	def := stepTable[sess.Step]

	form := make(map[string]string, len(sess.Form))
	for k, v := range sess.Form {
		form[k] = v
	}

	remaining := e.set.MaxPINAttempts - sess.PINAttempts
	if remaining < 0 {
		remaining = 0
	}

	v := &api.View{
		SessionID:         sess.ID,
		Step:              sess.Step,
		Form:              form,
		PINAttempts:       sess.PINAttempts,
		AttemptsRemaining: remaining,
		LastTransactionID: sess.LastTransactionID,
		Terminal:          def.Terminal,
	}
	if sess.Draft != nil {
		d := *sess.Draft
		v.Draft = &d
	}

	switch sess.Step {
	case api.StepLogin:
		v.Languages = e.dir.Languages()
	case api.StepAccountSelection:
		v.Accounts = e.dir.Accounts()
	case api.StepCheckBalance:
		if acct, ok := e.dir.Account(sess.AccountID); ok {
			v.Balance = &api.BalanceSnapshot{
				Account: acct,
				Recent:  e.dir.RecentTransactions(acct.ID),
			}
		}
	case api.StepFraudAlert:
		v.Alerts = e.dir.Alerts()
		v.ExpandedAlertID = sess.Form[expandedAlertKey]
	}

	return v
}
