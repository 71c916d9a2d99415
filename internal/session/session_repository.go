package session

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid/v5"

	"github.com/banssharp/banssharp/internal/database"
)

type repository struct {
	db database.Database
}

func NewRepository(database database.Database) Store {
	return &repository{db: database}
}

func (r repository) Save(ctx context.Context, sess *Session) error {
	return database.DBErr(r.db.ExecInsertBuilder(ctx, nil, r.db.
		Builder().
		Insert("sessions").
		Columns("session_id", "user_id", "created_on", "updated_on", "expires_on").
		Values(sess.ID, sess.UserID, sess.CreatedOn, sess.UpdatedOn, sess.ExpiresOn).
		Suffix("ON CONFLICT (session_id) DO UPDATE SET updated_on = EXCLUDED.updated_on, expires_on = EXCLUDED.expires_on")))
}

func (r repository) GetByID(ctx context.Context, sessionID uuid.UUID) (Session, error) {
	row, errRow := r.db.QueryRowBuilder(ctx, nil, r.db.
		Builder().
		Select("session_id", "user_id", "created_on", "updated_on", "expires_on").
		From("sessions").
		Where(sq.Eq{"session_id": sessionID}))
	if errRow != nil {
		return Session{}, database.DBErr(errRow)
	}

	var sess Session
	if errScan := row.Scan(&sess.ID, &sess.UserID, &sess.CreatedOn, &sess.UpdatedOn,
		&sess.ExpiresOn); errScan != nil {
		return Session{}, database.DBErr(errScan)
	}

	return sess, nil
}

func (r repository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return database.DBErr(r.db.ExecDeleteBuilder(ctx, nil, r.db.
		Builder().
		Delete("sessions").
		Where(sq.Eq{"session_id": sessionID})))
}

func (r repository) DeleteExpired(ctx context.Context) error {
	return database.DBErr(r.db.ExecDeleteBuilder(ctx, nil, r.db.
		Builder().
		Delete("sessions").
		Where(sq.Lt{"expires_on": time.Now()})))
}
