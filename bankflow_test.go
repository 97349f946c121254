package bankflow

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/require"

	"github.com/rpatil/bankflow/pkg/api"
)

func TestInMemoryEngine_FullFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	eng := NewInMemoryEngine(WithClock(InstantClock()))

	view, err := eng.StartSession(ctx)
	require.NoError(t, err)
	require.Equal(t, StepLogin, view.Step)
	id := view.SessionID

	_, err = eng.UpdateField(ctx, id, api.FieldLanguage, "en")
	require.NoError(t, err)
	_, err = eng.UpdateField(ctx, id, api.FieldPhone, "9876543210")
	require.NoError(t, err)

	view, err = eng.Submit(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StepOTPEntry, view.Step)

	_, err = eng.UpdateField(ctx, id, api.FieldOTP, "123456")
	require.NoError(t, err)
	view, err = eng.Submit(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StepAccountSelection, view.Step)
	require.Len(t, view.Accounts, 3)

	_, err = eng.UpdateField(ctx, id, api.FieldAccount, "sbi-001")
	require.NoError(t, err)
	view, err = eng.Submit(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StepPINEntry, view.Step)

	_, err = eng.UpdateField(ctx, id, api.FieldPIN, "1234")
	require.NoError(t, err)
	view, err = eng.Submit(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StepMainMenu, view.Step)

	_, err = eng.UpdateField(ctx, id, api.FieldService, "check-balance")
	require.NoError(t, err)
	view, err = eng.Submit(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StepCheckBalance, view.Step)
	require.NotNil(t, view.Balance)
	require.Equal(t, "sbi-001", view.Balance.Account.ID)
	require.Equal(t, "₹25,640.50", api.FormatINR(view.Balance.Account.BalanceMinor))
}

func TestInMemoryEngine_Options(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	metrics := &BasicMetrics{}
	eng := NewInMemoryEngine(
		WithClock(InstantClock()),
		WithObserver(metrics),
		WithReferencePIN("4321"),
		WithMaxPINAttempts(2),
	)

	view, err := eng.StartSession(ctx)
	require.NoError(t, err)
	id := view.SessionID

	_, err = eng.UpdateField(ctx, id, api.FieldLanguage, "ta")
	require.NoError(t, err)
	_, err = eng.UpdateField(ctx, id, api.FieldPhone, "9876543210")
	require.NoError(t, err)
	_, err = eng.Submit(ctx, id)
	require.NoError(t, err)
	_, err = eng.UpdateField(ctx, id, api.FieldOTP, "123456")
	require.NoError(t, err)
	_, err = eng.Submit(ctx, id)
	require.NoError(t, err)
	_, err = eng.UpdateField(ctx, id, api.FieldAccount, "icici-003")
	require.NoError(t, err)
	_, err = eng.Submit(ctx, id)
	require.NoError(t, err)

	// The stock PIN is wrong once the reference PIN is overridden.
	_, err = eng.UpdateField(ctx, id, api.FieldPIN, "1234")
	require.NoError(t, err)
	view, err = eng.Submit(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StepPINEntry, view.Step)
	require.Equal(t, 1, view.PINAttempts)

	_, err = eng.UpdateField(ctx, id, api.FieldPIN, "1111")
	require.NoError(t, err)
	view, err = eng.Submit(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StepLocked, view.Step, "two attempts allowed, then lockout")

	snap := metrics.Snapshot()
	require.Equal(t, int64(1), snap.SessionsStarted)
	require.Equal(t, int64(1), snap.SessionsLocked)
	require.Equal(t, int64(2), snap.OperationsFailed)
}

// TestSQLiteEngine_ResumeAcrossRestart demonstrates that a session survives
// a simulated process restart: a new engine over the same database resumes
// the flow exactly where the old one left it.
func TestSQLiteEngine_ResumeAcrossRestart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "bankflow.db")
	dsn := "file:" + dbPath + "?_journal=WAL"

	// --- Phase 1: authenticate up to the main menu.

	db1, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)

	eng1, err := NewSQLiteEngine(db1, WithClock(InstantClock()))
	require.NoError(t, err)

	view, err := eng1.StartSession(ctx)
	require.NoError(t, err)
	id := view.SessionID

	_, err = eng1.UpdateField(ctx, id, api.FieldLanguage, "hi")
	require.NoError(t, err)
	_, err = eng1.UpdateField(ctx, id, api.FieldPhone, "9876543210")
	require.NoError(t, err)
	_, err = eng1.Submit(ctx, id)
	require.NoError(t, err)
	_, err = eng1.UpdateField(ctx, id, api.FieldOTP, "123456")
	require.NoError(t, err)
	_, err = eng1.Submit(ctx, id)
	require.NoError(t, err)
	_, err = eng1.UpdateField(ctx, id, api.FieldAccount, "hdfc-002")
	require.NoError(t, err)
	_, err = eng1.Submit(ctx, id)
	require.NoError(t, err)
	_, err = eng1.UpdateField(ctx, id, api.FieldPIN, "1234")
	require.NoError(t, err)
	view, err = eng1.Submit(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StepMainMenu, view.Step)

	// Simulate a crash by closing the database and discarding the engine.
	require.NoError(t, db1.Close())

	// --- Phase 2: restart with a fresh handle and engine.

	db2, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db2.Close()
	})

	eng2, err := NewSQLiteEngine(db2, WithClock(InstantClock()))
	require.NoError(t, err)

	view, err = eng2.View(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StepMainMenu, view.Step, "session must resume on the main menu")

	// The resumed session is fully usable.
	_, err = eng2.UpdateField(ctx, id, api.FieldService, "check-balance")
	require.NoError(t, err)
	view, err = eng2.Submit(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StepCheckBalance, view.Step)
	require.NotNil(t, view.Balance)
	require.Equal(t, "hdfc-002", view.Balance.Account.ID)
}

func TestConvenienceWrappers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	eng := NewInMemoryEngine(WithClock(InstantClock()))

	view, err := StartSession(ctx, eng)
	require.NoError(t, err)
	id := view.SessionID

	_, err = UpdateField(ctx, eng, id, api.FieldLanguage, "en")
	require.NoError(t, err)
	_, err = UpdateField(ctx, eng, id, api.FieldPhone, "9876543210")
	require.NoError(t, err)

	view, err = Submit(ctx, eng, id)
	require.NoError(t, err)
	require.Equal(t, StepOTPEntry, view.Step)

	view, err = GoBack(ctx, eng, id)
	require.NoError(t, err)
	require.Equal(t, StepLogin, view.Step)
	require.Equal(t, "9876543210", view.Form[api.FieldPhone])

	view, err = Reset(ctx, eng, id)
	require.NoError(t, err)
	require.Equal(t, StepLogin, view.Step)
	require.Empty(t, view.Form)
}

func TestNewHTTPHandler(t *testing.T) {
	t.Parallel()

	eng := NewInMemoryEngine(WithClock(InstantClock()))
	srv := httptest.NewServer(NewHTTPHandler(eng))
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}
