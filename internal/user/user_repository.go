package user

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid/v5"
	"github.com/leighmacdonald/steamid/v4/steamid"

	"github.com/banssharp/banssharp/internal/database"
)

type repository struct {
	db database.Database
}

func NewRepository(database database.Database) Store {
	return &repository{db: database}
}

var userColumns = []string{ //nolint:gochecknoglobals
	"user_id", "email", "name", "image", "role", "steam_id", "steam_verified", "created_on", "updated_on",
}

func (r repository) scanRow(row interface{ Scan(...any) error }, account *User) error {
	return row.Scan(&account.ID, &account.Email, &account.Name, &account.Image, &account.Role,
		&account.SteamID, &account.SteamVerified, &account.CreatedOn, &account.UpdatedOn)
}

func (r repository) GetByID(ctx context.Context, userID uuid.UUID) (User, error) {
	row, errRow := r.db.QueryRowBuilder(ctx, nil, r.db.
		Builder().
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"user_id": userID}))
	if errRow != nil {
		return User{}, database.DBErr(errRow)
	}

	var account User
	if errScan := r.scanRow(row, &account); errScan != nil {
		return User{}, database.DBErr(errScan)
	}

	return account, nil
}

func (r repository) GetBySteamID(ctx context.Context, steamID steamid.SteamID) (User, error) {
	row, errRow := r.db.QueryRowBuilder(ctx, nil, r.db.
		Builder().
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"steam_id": steamID.String()}))
	if errRow != nil {
		return User{}, database.DBErr(errRow)
	}

	var account User
	if errScan := r.scanRow(row, &account); errScan != nil {
		return User{}, database.DBErr(errScan)
	}

	return account, nil
}

func (r repository) Create(ctx context.Context, account *User) error {
	return database.DBErr(r.db.ExecInsertBuilder(ctx, nil, r.db.
		Builder().
		Insert("users").
		Columns(userColumns...).
		Values(account.ID, account.Email, account.Name, account.Image, account.Role,
			account.SteamID, account.SteamVerified, account.CreatedOn, account.UpdatedOn)))
}

func (r repository) SavePatch(ctx context.Context, userID uuid.UUID, patch Patch) (User, error) {
	builder := r.db.
		Builder().
		Update("users").
		Set("updated_on", time.Now()).
		Where(sq.Eq{"user_id": userID}).
		Suffix("RETURNING user_id, email, name, image, role, steam_id, steam_verified, created_on, updated_on")

	if patch.Name.Set && !patch.Name.Null {
		builder = builder.Set("name", patch.Name.Value)
	}

	if patch.Image.Set {
		if patch.Image.Null {
			builder = builder.Set("image", nil)
		} else {
			builder = builder.Set("image", patch.Image.Value)
		}
	}

	if patch.SteamID.Set {
		if patch.SteamID.Null {
			builder = builder.Set("steam_id", nil)
		} else {
			builder = builder.Set("steam_id", patch.SteamID.Value)
		}
	}

	if patch.SteamVerified.Set && !patch.SteamVerified.Null {
		builder = builder.Set("steam_verified", patch.SteamVerified.Value)
	}

	query, args, errQuery := builder.ToSql()
	if errQuery != nil {
		return User{}, database.DBErr(errQuery)
	}

	var account User
	if errScan := r.scanRow(r.db.QueryRow(ctx, nil, query, args...), &account); errScan != nil {
		return User{}, database.DBErr(errScan)
	}

	return account, nil
}
