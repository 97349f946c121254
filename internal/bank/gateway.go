package bank

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rpatil/bankflow/pkg/api"
)

// Gateway models the remote banking backend. Every operation waits out a
// fixed per-kind delay on the injected Clock and then resolves; PIN
// verification is the only operation with a business failure branch.
type Gateway struct {
	dir       *Directory
	clock     api.Clock
	latencies api.Latencies
	pin       string
}

// NewGateway builds a gateway over the given directory. A nil clock
// defaults to real timers.
func NewGateway(dir *Directory, clock api.Clock, latencies api.Latencies, referencePIN string) *Gateway {
	if clock == nil {
		clock = api.SystemClock()
	}
	return &Gateway{
		dir:       dir,
		clock:     clock,
		latencies: latencies,
		pin:       referencePIN,
	}
}

// Invoke runs the simulated operation for kind against the session and
// returns its Outcome. The only error return is a cancelled context
// during the simulated delay; business failures are carried inside the
// Outcome.
func (g *Gateway) Invoke(ctx context.Context, kind api.OpKind, sess *api.Session) (api.Outcome, error) {
	if err := g.clock.Sleep(ctx, g.latencies.For(kind)); err != nil {
		return api.Outcome{}, err
	}

	switch kind {
	case api.OpSendOTP, api.OpVerifyOTP:
		// Happy-path stand-ins: once the form passed validation the
		// simulated server always accepts.
		return api.Success(nil), nil

	case api.OpVerifyPIN:
		if sess.Form[api.FieldPIN] == g.pin {
			return api.Success(nil), nil
		}
		return api.Failure(api.ReasonWrongPIN), nil

	case api.OpFetchBalance:
		acct, ok := g.dir.Account(sess.AccountID)
		if !ok {
			return api.Outcome{}, fmt.Errorf("unknown account: %s", sess.AccountID)
		}
		return api.Success(api.BalanceSnapshot{
			Account: acct,
			Recent:  g.dir.RecentTransactions(acct.ID),
		}), nil

	case api.OpSubmitTransfer:
		if sess.Draft == nil {
			return api.Outcome{}, fmt.Errorf("no transfer draft on session %s", sess.ID)
		}
		return api.Success(api.TransferReceipt{
			TransactionID: newTransactionID(),
			Draft:         *sess.Draft,
		}), nil
	}

	return api.Outcome{}, fmt.Errorf("unknown operation kind: %s", kind)
}

func newTransactionID() string {
	return "TXN" + strings.ToUpper(uuid.New().String()[:8])
}
