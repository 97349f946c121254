// Package bankflow provides a simulated mobile-banking session flow engine.
//
// Bankflow models the screen-to-screen flow of a mock banking client as an
// explicit finite-state machine decoupled from any UI toolkit: login via
// phone number and OTP, account selection, PIN entry with lockout, a main
// menu, balance view, a money transfer sub-flow, and fraud alerts. All data
// is hard-coded mock state; every "remote" call is an in-process delay
// standing in for a server round-trip.
//
// # Core Concepts
//
// The bankflow programming model is intentionally small:
//
//  1. Engine
//  2. Session
//  3. View
//  4. Step table
//  5. Gateway
//
// # Engine
//
// The Engine creates sessions and drives them through the flow graph. Its
// surface is the handful of calls a host needs:
//
//   - StartSession: new session at the Login step
//   - UpdateField: normalized input into the active step's form
//   - Submit: validate the form, run the step's simulated operation, and
//     apply the transition
//   - GoBack / Reset: declared predecessor step, or a fresh session
//
// Sessions can live in different stores:
//
//   - In-memory (best for tests and demos)
//   - SQLite (embedded durability, resume by session ID)
//   - Redis (shared store with optional TTL)
//
// The engine processes one mutating call per session at a time: while a
// simulated operation is waiting out its delay, a second Submit on the same
// session is rejected with ErrOperationInFlight rather than queued.
//
// # Session and View
//
// A Session is the flow state for one user interaction: current step,
// active form, PIN attempt counter, and the transfer draft while inside
// the Send Money sub-flow. Hosts never mutate a Session directly; every
// engine call returns a View, an immutable snapshot carrying the form,
// remaining PIN attempts, and the step's display payload (accounts,
// balance, fraud alerts).
//
// # Step table
//
// The entire flow graph, including the lockout branch at PIN entry and the
// three-state Send Money cycle, lives in one declarative step table. The
// graph is inspectable and testable without driving a UI.
//
// # Gateway
//
// Remote operations (send OTP, verify OTP, verify PIN, fetch balance,
// submit transfer) resolve after a fixed per-kind delay. The delay source
// is an injectable Clock, so tests fast-forward instead of sleeping. PIN
// verification against the reference value is the only operation that can
// fail. Observers (slog logging, basic counters, Prometheus) hook every
// lifecycle event.
//
// For examples, see the /examples directory or the project README.
package bankflow
