// Package persistence provides storage backends for flow sessions.
package persistence

import (
	"errors"

	"github.com/rpatil/bankflow/pkg/api"
)

// ErrSessionNotFound is returned when a session ID is not in the store.
var ErrSessionNotFound = errors.New("session not found")

// SessionFilter selects sessions from the store. Zero values mean
// "no filter" for that field.
type SessionFilter struct {
	Step api.StepID
}

// SessionStore handles storage of flow sessions. Implementations must be
// safe for concurrent use and must not alias stored sessions with values
// returned to callers.
type SessionStore interface {
	SaveSession(sess *api.Session) error
	UpdateSession(sess *api.Session) error
	GetSession(id string) (*api.Session, error)
	DeleteSession(id string) error
	ListSessions(filter SessionFilter) ([]*api.Session, error)
}
