package ban

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/banssharp/banssharp/internal/database"
)

type repository struct {
	db database.Database
}

func NewRepository(database database.Database) Store {
	return &repository{db: database}
}

func (r repository) adminSteamIDExists(ctx context.Context, tx pgx.Tx, adminSteamID string) error {
	count, errCount := r.db.GetCount(ctx, tx, r.db.
		Builder().
		Select("count(admin_id)").
		From("sa_admins").
		Where(sq.Eq{"player_steamid": adminSteamID}))
	if errCount != nil {
		return database.DBErr(errCount)
	}

	if count == 0 {
		return ErrAdminNotFound
	}

	return nil
}

func (r repository) serverExists(ctx context.Context, tx pgx.Tx, serverID *int) error {
	if serverID == nil {
		return nil
	}

	count, errCount := r.db.GetCount(ctx, tx, r.db.
		Builder().
		Select("count(server_id)").
		From("sa_servers").
		Where(sq.Eq{"server_id": *serverID}))
	if errCount != nil {
		return database.DBErr(errCount)
	}

	if count == 0 {
		return ErrServerNotFound
	}

	return nil
}

func (r repository) rowExists(ctx context.Context, tx pgx.Tx, table string, idColumn string, id int, missing error) error {
	count, errCount := r.db.GetCount(ctx, tx, r.db.
		Builder().
		Select("count("+idColumn+")").
		From(table).
		Where(sq.Eq{idColumn: id}))
	if errCount != nil {
		return database.DBErr(errCount)
	}

	if count == 0 {
		return missing
	}

	return nil
}

func applyFilter(builder sq.SelectBuilder, filter Filter) sq.SelectBuilder {
	if filter.PlayerSteamID != "" {
		builder = builder.Where(sq.Eq{"player_steamid": filter.PlayerSteamID})
	}

	if filter.ServerID > 0 {
		builder = builder.Where(sq.Eq{"server_id": filter.ServerID})
	}

	return builder
}

var banColumns = []string{
	"ban_id", "player_name", "player_steamid", "player_ip", "admin_steamid",
	"admin_name", "reason", "duration", "ends", "created", "server_id",
	"unban_id", "status",
}

func (r repository) Bans(ctx context.Context, filter Filter) ([]Ban, error) {
	rows, errQuery := r.db.QueryBuilder(ctx, nil, applyFilter(r.db.
		Builder().
		Select(banColumns...).
		From("sa_bans").
		OrderBy("ban_id DESC"), filter))
	if errQuery != nil {
		return nil, database.DBErr(errQuery)
	}

	defer rows.Close()

	bans := []Ban{}

	for rows.Next() {
		var ban Ban
		if errScan := rows.Scan(&ban.BanID, &ban.PlayerName, &ban.PlayerSteamID, &ban.PlayerIP,
			&ban.AdminSteamID, &ban.AdminName, &ban.Reason, &ban.Duration, &ban.Ends,
			&ban.Created, &ban.ServerID, &ban.UnbanID, &ban.Status); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		bans = append(bans, ban)
	}

	return bans, nil
}

func (r repository) AddBan(ctx context.Context, ban *Ban) error {
	return r.db.WrapTx(ctx, func(tx pgx.Tx) error {
		if errAdmin := r.adminSteamIDExists(ctx, tx, ban.AdminSteamID); errAdmin != nil {
			return errAdmin
		}

		if errServer := r.serverExists(ctx, tx, ban.ServerID); errServer != nil {
			return errServer
		}

		return database.DBErr(r.db.ExecInsertBuilderWithReturnValue(ctx, tx, r.db.
			Builder().
			Insert("sa_bans").
			Columns("player_name", "player_steamid", "player_ip", "admin_steamid",
				"admin_name", "reason", "duration", "ends", "created", "server_id", "status").
			Values(ban.PlayerName, ban.PlayerSteamID, ban.PlayerIP, ban.AdminSteamID,
				ban.AdminName, ban.Reason, ban.Duration, ban.Ends, ban.Created,
				ban.ServerID, ban.Status).
			Suffix("RETURNING ban_id"), &ban.BanID))
	})
}

func (r repository) EditBan(ctx context.Context, ban *Ban) error {
	return r.db.WrapTx(ctx, func(tx pgx.Tx) error {
		if errBan := r.rowExists(ctx, tx, "sa_bans", "ban_id", ban.BanID, ErrBanNotFound); errBan != nil {
			return errBan
		}

		if errServer := r.serverExists(ctx, tx, ban.ServerID); errServer != nil {
			return errServer
		}

		return database.DBErr(r.db.ExecUpdateBuilder(ctx, tx, r.db.
			Builder().
			Update("sa_bans").
			Set("player_name", ban.PlayerName).
			Set("player_steamid", ban.PlayerSteamID).
			Set("player_ip", ban.PlayerIP).
			Set("reason", ban.Reason).
			Set("duration", ban.Duration).
			Set("ends", ban.Ends).
			Set("server_id", ban.ServerID).
			Where(sq.Eq{"ban_id": ban.BanID})))
	})
}

func (r repository) Unban(ctx context.Context, banID int, adminID int, reason string) error {
	return r.db.WrapTx(ctx, func(tx pgx.Tx) error {
		if errBan := r.rowExists(ctx, tx, "sa_bans", "ban_id", banID, ErrBanNotFound); errBan != nil {
			return errBan
		}

		if errAdmin := r.rowExists(ctx, tx, "sa_admins", "admin_id", adminID, ErrAdminNotFound); errAdmin != nil {
			return errAdmin
		}

		var unbanID int
		if errInsert := r.db.ExecInsertBuilderWithReturnValue(ctx, tx, r.db.
			Builder().
			Insert("sa_unbans").
			Columns("ban_id", "admin_id", "reason").
			Values(banID, adminID, reason).
			Suffix("RETURNING unban_id"), &unbanID); errInsert != nil {
			return database.DBErr(errInsert)
		}

		return database.DBErr(r.db.ExecUpdateBuilder(ctx, tx, r.db.
			Builder().
			Update("sa_bans").
			Set("status", StatusUnbanned).
			Set("unban_id", unbanID).
			Where(sq.Eq{"ban_id": banID})))
	})
}

var muteColumns = []string{
	"mute_id", "player_name", "player_steamid", "admin_steamid", "admin_name",
	"reason", "duration", "passed", "ends", "created", "type", "server_id",
	"unmute_id", "status",
}

func (r repository) Mutes(ctx context.Context, filter Filter) ([]Mute, error) {
	rows, errQuery := r.db.QueryBuilder(ctx, nil, applyFilter(r.db.
		Builder().
		Select(muteColumns...).
		From("sa_mutes").
		OrderBy("mute_id DESC"), filter))
	if errQuery != nil {
		return nil, database.DBErr(errQuery)
	}

	defer rows.Close()

	mutes := []Mute{}

	for rows.Next() {
		var mute Mute
		if errScan := rows.Scan(&mute.MuteID, &mute.PlayerName, &mute.PlayerSteamID,
			&mute.AdminSteamID, &mute.AdminName, &mute.Reason, &mute.Duration, &mute.Passed,
			&mute.Ends, &mute.Created, &mute.Type, &mute.ServerID, &mute.UnmuteID,
			&mute.Status); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		mutes = append(mutes, mute)
	}

	return mutes, nil
}

func (r repository) AddMute(ctx context.Context, mute *Mute) error {
	return r.db.WrapTx(ctx, func(tx pgx.Tx) error {
		if errAdmin := r.adminSteamIDExists(ctx, tx, mute.AdminSteamID); errAdmin != nil {
			return errAdmin
		}

		if errServer := r.serverExists(ctx, tx, mute.ServerID); errServer != nil {
			return errServer
		}

		return database.DBErr(r.db.ExecInsertBuilderWithReturnValue(ctx, tx, r.db.
			Builder().
			Insert("sa_mutes").
			Columns("player_name", "player_steamid", "admin_steamid", "admin_name",
				"reason", "duration", "ends", "created", "type", "server_id", "status").
			Values(mute.PlayerName, mute.PlayerSteamID, mute.AdminSteamID, mute.AdminName,
				mute.Reason, mute.Duration, mute.Ends, mute.Created, mute.Type,
				mute.ServerID, mute.Status).
			Suffix("RETURNING mute_id"), &mute.MuteID))
	})
}

func (r repository) EditMute(ctx context.Context, mute *Mute) error {
	return r.db.WrapTx(ctx, func(tx pgx.Tx) error {
		if errMute := r.rowExists(ctx, tx, "sa_mutes", "mute_id", mute.MuteID, ErrMuteNotFound); errMute != nil {
			return errMute
		}

		if errServer := r.serverExists(ctx, tx, mute.ServerID); errServer != nil {
			return errServer
		}

		return database.DBErr(r.db.ExecUpdateBuilder(ctx, tx, r.db.
			Builder().
			Update("sa_mutes").
			Set("player_name", mute.PlayerName).
			Set("player_steamid", mute.PlayerSteamID).
			Set("reason", mute.Reason).
			Set("duration", mute.Duration).
			Set("ends", mute.Ends).
			Set("type", mute.Type).
			Set("server_id", mute.ServerID).
			Where(sq.Eq{"mute_id": mute.MuteID})))
	})
}

func (r repository) Unmute(ctx context.Context, muteID int, adminID int, reason string) error {
	return r.db.WrapTx(ctx, func(tx pgx.Tx) error {
		if errMute := r.rowExists(ctx, tx, "sa_mutes", "mute_id", muteID, ErrMuteNotFound); errMute != nil {
			return errMute
		}

		if errAdmin := r.rowExists(ctx, tx, "sa_admins", "admin_id", adminID, ErrAdminNotFound); errAdmin != nil {
			return errAdmin
		}

		var unmuteID int
		if errInsert := r.db.ExecInsertBuilderWithReturnValue(ctx, tx, r.db.
			Builder().
			Insert("sa_unmutes").
			Columns("mute_id", "admin_id", "reason").
			Values(muteID, adminID, reason).
			Suffix("RETURNING unmute_id"), &unmuteID); errInsert != nil {
			return database.DBErr(errInsert)
		}

		return database.DBErr(r.db.ExecUpdateBuilder(ctx, tx, r.db.
			Builder().
			Update("sa_mutes").
			Set("status", StatusUnmuted).
			Set("unmute_id", unmuteID).
			Where(sq.Eq{"mute_id": muteID})))
	})
}

var warnColumns = []string{
	"warn_id", "player_name", "player_steamid", "admin_steamid", "admin_name",
	"reason", "duration", "ends", "created", "server_id", "status",
}

func (r repository) Warns(ctx context.Context, filter Filter) ([]Warn, error) {
	rows, errQuery := r.db.QueryBuilder(ctx, nil, applyFilter(r.db.
		Builder().
		Select(warnColumns...).
		From("sa_warns").
		OrderBy("warn_id DESC"), filter))
	if errQuery != nil {
		return nil, database.DBErr(errQuery)
	}

	defer rows.Close()

	warns := []Warn{}

	for rows.Next() {
		var warn Warn
		if errScan := rows.Scan(&warn.WarnID, &warn.PlayerName, &warn.PlayerSteamID,
			&warn.AdminSteamID, &warn.AdminName, &warn.Reason, &warn.Duration, &warn.Ends,
			&warn.Created, &warn.ServerID, &warn.Status); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		warns = append(warns, warn)
	}

	return warns, nil
}

func (r repository) AddWarn(ctx context.Context, warn *Warn) error {
	return r.db.WrapTx(ctx, func(tx pgx.Tx) error {
		if errAdmin := r.adminSteamIDExists(ctx, tx, warn.AdminSteamID); errAdmin != nil {
			return errAdmin
		}

		if errServer := r.serverExists(ctx, tx, warn.ServerID); errServer != nil {
			return errServer
		}

		return database.DBErr(r.db.ExecInsertBuilderWithReturnValue(ctx, tx, r.db.
			Builder().
			Insert("sa_warns").
			Columns("player_name", "player_steamid", "admin_steamid", "admin_name",
				"reason", "duration", "ends", "created", "server_id", "status").
			Values(warn.PlayerName, warn.PlayerSteamID, warn.AdminSteamID, warn.AdminName,
				warn.Reason, warn.Duration, warn.Ends, warn.Created, warn.ServerID,
				warn.Status).
			Suffix("RETURNING warn_id"), &warn.WarnID))
	})
}

func (r repository) EditWarn(ctx context.Context, warn *Warn) error {
	return r.db.WrapTx(ctx, func(tx pgx.Tx) error {
		if errWarn := r.rowExists(ctx, tx, "sa_warns", "warn_id", warn.WarnID, ErrWarnNotFound); errWarn != nil {
			return errWarn
		}

		if errServer := r.serverExists(ctx, tx, warn.ServerID); errServer != nil {
			return errServer
		}

		return database.DBErr(r.db.ExecUpdateBuilder(ctx, tx, r.db.
			Builder().
			Update("sa_warns").
			Set("player_name", warn.PlayerName).
			Set("player_steamid", warn.PlayerSteamID).
			Set("reason", warn.Reason).
			Set("duration", warn.Duration).
			Set("ends", warn.Ends).
			Set("server_id", warn.ServerID).
			Where(sq.Eq{"warn_id": warn.WarnID})))
	})
}

func (r repository) DeleteWarn(ctx context.Context, warnID int) error {
	return r.db.WrapTx(ctx, func(tx pgx.Tx) error {
		if errWarn := r.rowExists(ctx, tx, "sa_warns", "warn_id", warnID, ErrWarnNotFound); errWarn != nil {
			return errWarn
		}

		return database.DBErr(r.db.ExecDeleteBuilder(ctx, tx, r.db.
			Builder().
			Delete("sa_warns").
			Where(sq.Eq{"warn_id": warnID})))
	})
}
