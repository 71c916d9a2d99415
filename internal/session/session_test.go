package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/banssharp/banssharp/internal/database"
	"github.com/banssharp/banssharp/internal/session"
)

func TestIssue(t *testing.T) {
	sessions := session.NewSessions(session.NewMemoryRepository())
	userID := uuid.Must(uuid.NewV4())

	sess, errIssue := sessions.Issue(context.Background(), userID)
	require.NoError(t, errIssue)
	require.Equal(t, userID, sess.UserID)
	require.False(t, sess.Expired())
	require.WithinDuration(t, time.Now().Add(session.Lifetime), sess.ExpiresOn, time.Minute)

	loaded, errGet := sessions.Get(context.Background(), sess.ID)
	require.NoError(t, errGet)
	require.Equal(t, sess.ID, loaded.ID)
}

func TestGetUnknown(t *testing.T) {
	sessions := session.NewSessions(session.NewMemoryRepository())

	_, errGet := sessions.Get(context.Background(), uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, errGet, database.ErrNoResult)
}

func TestSlidingRenewal(t *testing.T) {
	store := session.NewMemoryRepository()
	sessions := session.NewSessions(store)

	now := time.Now()

	// Touched within the renewal window, the expiry stays put.
	fresh := session.Session{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    uuid.Must(uuid.NewV4()),
		CreatedOn: now.Add(-time.Hour),
		UpdatedOn: now.Add(-time.Hour),
		ExpiresOn: now.Add(session.Lifetime - time.Hour),
	}
	require.NoError(t, store.Save(context.Background(), &fresh))

	loaded, errFresh := sessions.Get(context.Background(), fresh.ID)
	require.NoError(t, errFresh)
	require.Equal(t, fresh.ExpiresOn.Unix(), loaded.ExpiresOn.Unix())
	require.Equal(t, fresh.UpdatedOn.Unix(), loaded.UpdatedOn.Unix())

	// Stale past the threshold, the expiry slides forward.
	stale := session.Session{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    uuid.Must(uuid.NewV4()),
		CreatedOn: now.Add(-48 * time.Hour),
		UpdatedOn: now.Add(-session.RenewAfter - time.Minute),
		ExpiresOn: now.Add(session.Lifetime - 48*time.Hour),
	}
	require.NoError(t, store.Save(context.Background(), &stale))

	renewed, errStale := sessions.Get(context.Background(), stale.ID)
	require.NoError(t, errStale)
	require.True(t, renewed.ExpiresOn.After(stale.ExpiresOn))
	require.WithinDuration(t, now.Add(session.Lifetime), renewed.ExpiresOn, time.Minute)

	// The renewal is persisted, not just returned.
	persisted, errPersisted := store.GetByID(context.Background(), stale.ID)
	require.NoError(t, errPersisted)
	require.Equal(t, renewed.ExpiresOn.Unix(), persisted.ExpiresOn.Unix())
}

func TestExpiredIsDeleted(t *testing.T) {
	store := session.NewMemoryRepository()
	sessions := session.NewSessions(store)

	expired := session.Session{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    uuid.Must(uuid.NewV4()),
		CreatedOn: time.Now().Add(-8 * 24 * time.Hour),
		UpdatedOn: time.Now().Add(-8 * 24 * time.Hour),
		ExpiresOn: time.Now().Add(-time.Hour),
	}
	require.NoError(t, store.Save(context.Background(), &expired))

	_, errGet := sessions.Get(context.Background(), expired.ID)
	require.ErrorIs(t, errGet, session.ErrExpired)

	_, errAfter := store.GetByID(context.Background(), expired.ID)
	require.ErrorIs(t, errAfter, database.ErrNoResult)
}

func TestRevoke(t *testing.T) {
	sessions := session.NewSessions(session.NewMemoryRepository())

	sess, errIssue := sessions.Issue(context.Background(), uuid.Must(uuid.NewV4()))
	require.NoError(t, errIssue)

	require.NoError(t, sessions.Revoke(context.Background(), sess.ID))

	_, errGet := sessions.Get(context.Background(), sess.ID)
	require.ErrorIs(t, errGet, database.ErrNoResult)
}

func TestPruneExpired(t *testing.T) {
	store := session.NewMemoryRepository()
	sessions := session.NewSessions(store)

	live, errIssue := sessions.Issue(context.Background(), uuid.Must(uuid.NewV4()))
	require.NoError(t, errIssue)

	dead := session.Session{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    uuid.Must(uuid.NewV4()),
		ExpiresOn: time.Now().Add(-time.Minute),
	}
	require.NoError(t, store.Save(context.Background(), &dead))

	require.NoError(t, sessions.PruneExpired(context.Background()))

	_, errLive := store.GetByID(context.Background(), live.ID)
	require.NoError(t, errLive)

	_, errDead := store.GetByID(context.Background(), dead.ID)
	require.ErrorIs(t, errDead, database.ErrNoResult)
}
