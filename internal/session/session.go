package session

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/banssharp/banssharp/internal/user"
)

const (
	// Lifetime is how long a session lives without renewal.
	Lifetime = time.Hour * 24 * 7
	// RenewAfter is the sliding renewal threshold. A session touched more
	// than this long after its last update gets its expiry pushed out.
	RenewAfter = time.Hour * 24
)

const ctxKeyUserProfile = "user_profile"

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrExpired     = errors.New("session expired")
)

type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
	ExpiresOn time.Time `json:"expires_on"`
}

func (s Session) Expired() bool {
	return time.Now().After(s.ExpiresOn)
}

type Store interface {
	Save(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, sessionID uuid.UUID) (Session, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
	DeleteExpired(ctx context.Context) error
}

// CurrentUser returns the profile attached to the request by the auth middleware.
func CurrentUser(ctx *gin.Context) (user.User, error) {
	maybeProfile, found := ctx.Get(ctxKeyUserProfile)
	if !found {
		return user.User{}, ErrNotLoggedIn
	}

	profile, ok := maybeProfile.(user.User)
	if !ok {
		return user.User{}, ErrNotLoggedIn
	}

	return profile, nil
}

func SetCurrentUser(ctx *gin.Context, profile user.User) {
	ctx.Set(ctxKeyUserProfile, profile)
}

type Sessions struct {
	store Store
}

func NewSessions(store Store) Sessions {
	return Sessions{store: store}
}

// Issue creates a single new session row for the user.
func (s Sessions) Issue(ctx context.Context, userID uuid.UUID) (Session, error) {
	now := time.Now()

	sess := Session{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    userID,
		CreatedOn: now,
		UpdatedOn: now,
		ExpiresOn: now.Add(Lifetime),
	}

	if errSave := s.store.Save(ctx, &sess); errSave != nil {
		return Session{}, errSave
	}

	return sess, nil
}

// Get loads a session, discarding it when expired and sliding the expiry
// forward at most once per renewal window.
func (s Sessions) Get(ctx context.Context, sessionID uuid.UUID) (Session, error) {
	sess, errGet := s.store.GetByID(ctx, sessionID)
	if errGet != nil {
		return Session{}, errGet
	}

	now := time.Now()

	if sess.Expired() {
		if errDelete := s.store.Delete(ctx, sessionID); errDelete != nil {
			return Session{}, errDelete
		}

		return Session{}, ErrExpired
	}

	if now.Sub(sess.UpdatedOn) > RenewAfter {
		sess.UpdatedOn = now
		sess.ExpiresOn = now.Add(Lifetime)

		if errSave := s.store.Save(ctx, &sess); errSave != nil {
			return Session{}, errSave
		}
	}

	return sess, nil
}

func (s Sessions) Revoke(ctx context.Context, sessionID uuid.UUID) error {
	return s.store.Delete(ctx, sessionID)
}

func (s Sessions) PruneExpired(ctx context.Context) error {
	return s.store.DeleteExpired(ctx)
}
