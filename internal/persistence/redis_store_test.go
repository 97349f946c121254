package persistence

import (
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/rpatil/bankflow/pkg/api"
)

func newTestRedisStore(t *testing.T, opts ...RedisOption) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return NewRedisSessionStore(client, opts...), mr
}

func TestRedisSessionStore_SaveGetUpdate(t *testing.T) {
	store, _ := newTestRedisStore(t)

	sess := sampleSession("s-1")
	sess.Draft = &api.TransferDraft{
		ReceiverName:  "Asha Rao",
		ReceiverPhone: "9123456780",
		AmountMinor:   10_000,
	}
	require.NoError(t, store.SaveSession(sess))

	got, err := store.GetSession("s-1")
	require.NoError(t, err)
	require.Equal(t, api.StepPINEntry, got.Step)
	require.Equal(t, "9876543210", got.Phone)
	require.Equal(t, "12", got.Form[api.FieldPIN])
	require.NotNil(t, got.Draft)
	require.Equal(t, int64(10_000), got.Draft.AmountMinor)

	got.Step = api.StepMainMenu
	got.Draft = nil
	require.NoError(t, store.UpdateSession(got))

	again, err := store.GetSession("s-1")
	require.NoError(t, err)
	require.Equal(t, api.StepMainMenu, again.Step)
	require.Nil(t, again.Draft)
	require.NotNil(t, again.Form, "form must come back non-nil")
}

func TestRedisSessionStore_NotFound(t *testing.T) {
	store, _ := newTestRedisStore(t)

	_, err := store.GetSession("nope")
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, store.UpdateSession(sampleSession("nope")), ErrSessionNotFound)
	require.ErrorIs(t, store.DeleteSession("nope"), ErrSessionNotFound)
}

func TestRedisSessionStore_ListSessions(t *testing.T) {
	store, _ := newTestRedisStore(t)

	a := sampleSession("s-a")
	b := sampleSession("s-b")
	b.Step = api.StepLocked
	require.NoError(t, store.SaveSession(a))
	require.NoError(t, store.SaveSession(b))

	all, err := store.ListSessions(SessionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	locked, err := store.ListSessions(SessionFilter{Step: api.StepLocked})
	require.NoError(t, err)
	require.Len(t, locked, 1)
	require.Equal(t, "s-b", locked[0].ID)
}

func TestRedisSessionStore_Delete(t *testing.T) {
	store, _ := newTestRedisStore(t)

	require.NoError(t, store.SaveSession(sampleSession("s-1")))
	require.NoError(t, store.DeleteSession("s-1"))

	_, err := store.GetSession("s-1")
	require.ErrorIs(t, err, ErrSessionNotFound)

	all, err := store.ListSessions(SessionFilter{})
	require.NoError(t, err)
	require.Empty(t, all, "deleted session must leave the index")
}

func TestRedisSessionStore_TTLExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t, WithTTL(time.Minute))

	require.NoError(t, store.SaveSession(sampleSession("s-1")))

	mr.FastForward(2 * time.Minute)

	_, err := store.GetSession("s-1")
	require.ErrorIs(t, err, ErrSessionNotFound)

	// The index entry for the expired value is skipped, not an error.
	all, err := store.ListSessions(SessionFilter{})
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestRedisSessionStore_CustomPrefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisSessionStore(client, WithPrefix("other:"))
	require.NoError(t, store.SaveSession(sampleSession("s-1")))

	require.True(t, mr.Exists("other:s-1"))
	require.False(t, mr.Exists("bankflow:session:s-1"))

	def := NewRedisSessionStore(client)
	_, err = def.GetSession("s-1")
	require.True(t, errors.Is(err, ErrSessionNotFound), "default prefix must not see the custom-prefix key")
}
