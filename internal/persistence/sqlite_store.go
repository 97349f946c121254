package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rpatil/bankflow/pkg/api"
)

// SQLiteSessionStore is a SessionStore backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteSessionStore struct {
	db *sql.DB
}

// Ensure SQLiteSessionStore implements SessionStore.
var _ SessionStore = (*SQLiteSessionStore)(nil)

// NewSQLiteSessionStore initializes the required schema in the given
// database and returns a new SQLiteSessionStore.
func NewSQLiteSessionStore(db *sql.DB) (*SQLiteSessionStore, error) {
	s := &SQLiteSessionStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSessionStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			step TEXT NOT NULL,
			form BLOB,
			pin_attempts INTEGER NOT NULL,
			language TEXT,
			phone TEXT,
			account_id TEXT,
			draft BLOB,
			last_transaction_id TEXT,
			updated_at INTEGER NOT NULL
		);`,
	)
	return err
}

func encodeSessionColumns(sess *api.Session) (form, draft []byte, err error) {
	form, err = json.Marshal(sess.Form)
	if err != nil {
		return nil, nil, err
	}
	if sess.Draft != nil {
		draft, err = json.Marshal(sess.Draft)
		if err != nil {
			return nil, nil, err
		}
	}
	return form, draft, nil
}

func (s *SQLiteSessionStore) SaveSession(sess *api.Session) error {
	form, draft, err := encodeSessionColumns(sess)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO sessions (id, step, form, pin_attempts, language, phone, account_id, draft, last_transaction_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		string(sess.Step),
		form,
		sess.PINAttempts,
		sess.Language,
		sess.Phone,
		sess.AccountID,
		draft,
		sess.LastTransactionID,
		sess.UpdatedAt.UnixMilli(),
	)
	return err
}

func (s *SQLiteSessionStore) UpdateSession(sess *api.Session) error {
	form, draft, err := encodeSessionColumns(sess)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`
		UPDATE sessions
		SET step = ?, form = ?, pin_attempts = ?, language = ?, phone = ?, account_id = ?, draft = ?, last_transaction_id = ?, updated_at = ?
		WHERE id = ?`,
		string(sess.Step),
		form,
		sess.PINAttempts,
		sess.Language,
		sess.Phone,
		sess.AccountID,
		draft,
		sess.LastTransactionID,
		sess.UpdatedAt.UnixMilli(),
		sess.ID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (s *SQLiteSessionStore) GetSession(id string) (*api.Session, error) {
	row := s.db.QueryRow(`
		SELECT id, step, form, pin_attempts, language, phone, account_id, draft, last_transaction_id, updated_at
		FROM sessions
		WHERE id = ?`,
		id,
	)

	sess, err := scanSession(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return sess, nil
}

func (s *SQLiteSessionStore) DeleteSession(id string) error {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SQLiteSessionStore) ListSessions(filter SessionFilter) ([]*api.Session, error) {
	query := `
		SELECT id, step, form, pin_attempts, language, phone, account_id, draft, last_transaction_id, updated_at
		FROM sessions`
	var args []any
	var clauses []string

	if filter.Step != "" {
		clauses = append(clauses, "step = ?")
		args = append(args, string(filter.Step))
	}

	if len(clauses) > 0 {
		query = query + " WHERE " + strings.Join(clauses, " AND ")
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*api.Session

	for rows.Next() {
		sess, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

func scanSession(scan func(dest ...any) error) (*api.Session, error) {
	var sess api.Session
	var stepStr string
	var form, draft []byte
	var language, phone, accountID, lastTxn sql.NullString
	var updatedAt int64

	if err := scan(&sess.ID, &stepStr, &form, &sess.PINAttempts, &language, &phone, &accountID, &draft, &lastTxn, &updatedAt); err != nil {
		return nil, err
	}

	sess.Step = api.StepID(stepStr)
	sess.Language = language.String
	sess.Phone = phone.String
	sess.AccountID = accountID.String
	sess.LastTransactionID = lastTxn.String
	sess.UpdatedAt = time.UnixMilli(updatedAt)

	sess.Form = make(map[string]string)
	if len(form) > 0 {
		if err := json.Unmarshal(form, &sess.Form); err != nil {
			return nil, err
		}
	}
	if len(draft) > 0 {
		var d api.TransferDraft
		if err := json.Unmarshal(draft, &d); err != nil {
			return nil, err
		}
		sess.Draft = &d
	}

	return &sess, nil
}
