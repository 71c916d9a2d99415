package admin

import (
	"context"
	"errors"

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

func (r repository) serverExists(ctx context.Context, tx pgx.Tx, serverID *int) error {
	if serverID == nil {
		return nil
	}

	return r.rowExists(ctx, tx, "sa_servers", "server_id", *serverID, ErrServerNotFound)
}

func (r repository) groupExists(ctx context.Context, tx pgx.Tx, groupID *int) error {
	if groupID == nil {
		return nil
	}

	return r.rowExists(ctx, tx, "sa_groups", "group_id", *groupID, ErrGroupNotFound)
}

func (r repository) Admins(ctx context.Context) ([]Admin, error) {
	rows, errQuery := r.db.QueryBuilder(ctx, nil, r.db.
		Builder().
		Select("admin_id", "player_name", "player_steamid", "flags", "immunity",
			"server_id", "group_id", "ends", "created").
		From("sa_admins").
		OrderBy("admin_id"))
	if errQuery != nil {
		return nil, database.DBErr(errQuery)
	}

	defer rows.Close()

	admins := []Admin{}

	for rows.Next() {
		var admin Admin
		if errScan := rows.Scan(&admin.AdminID, &admin.PlayerName, &admin.PlayerSteamID,
			&admin.Flags, &admin.Immunity, &admin.ServerID, &admin.GroupID, &admin.Ends,
			&admin.Created); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		admins = append(admins, admin)
	}

	return admins, nil
}

func (r repository) replaceAdminFlags(ctx context.Context, tx pgx.Tx, adminID int, flags []string) error {
	if errDelete := r.db.ExecDeleteBuilder(ctx, tx, r.db.
		Builder().
		Delete("sa_admins_flags").
		Where(sq.Eq{"admin_id": adminID})); errDelete != nil {
		return database.DBErr(errDelete)
	}

	for _, flag := range flags {
		if errInsert := r.db.ExecInsertBuilder(ctx, tx, r.db.
			Builder().
			Insert("sa_admins_flags").
			Columns("admin_id", "flag").
			Values(adminID, flag)); errInsert != nil {
			return database.DBErr(errInsert)
		}
	}

	return nil
}

func (r repository) AddAdmin(ctx context.Context, admin *Admin) error {
	return r.db.WrapTx(ctx, func(tx pgx.Tx) error {
		if errServer := r.serverExists(ctx, tx, admin.ServerID); errServer != nil {
			return errServer
		}

		if errGroup := r.groupExists(ctx, tx, admin.GroupID); errGroup != nil {
			return errGroup
		}

		if errInsert := r.db.ExecInsertBuilderWithReturnValue(ctx, tx, r.db.
			Builder().
			Insert("sa_admins").
			Columns("player_name", "player_steamid", "flags", "immunity",
				"server_id", "group_id", "ends", "created").
			Values(admin.PlayerName, admin.PlayerSteamID, admin.Flags, admin.Immunity,
				admin.ServerID, admin.GroupID, admin.Ends, admin.Created).
			Suffix("RETURNING admin_id"), &admin.AdminID); errInsert != nil {
			return database.DBErr(errInsert)
		}

		return r.replaceAdminFlags(ctx, tx, admin.AdminID, admin.FlagList())
	})
}

func (r repository) EditAdmin(ctx context.Context, admin *Admin) error {
	return r.db.WrapTx(ctx, func(tx pgx.Tx) error {
		row, errRow := r.db.QueryRowBuilder(ctx, tx, r.db.
			Builder().
			Select("flags").
			From("sa_admins").
			Where(sq.Eq{"admin_id": admin.AdminID}))
		if errRow != nil {
			return database.DBErr(errRow)
		}

		var oldFlags *string
		if errScan := row.Scan(&oldFlags); errScan != nil {
			if errors.Is(database.DBErr(errScan), database.ErrNoResult) {
				return ErrAdminNotFound
			}

			return database.DBErr(errScan)
		}

		if errServer := r.serverExists(ctx, tx, admin.ServerID); errServer != nil {
			return errServer
		}

		if errGroup := r.groupExists(ctx, tx, admin.GroupID); errGroup != nil {
			return errGroup
		}

		if errUpdate := r.db.ExecUpdateBuilder(ctx, tx, r.db.
			Builder().
			Update("sa_admins").
			Set("player_name", admin.PlayerName).
			Set("player_steamid", admin.PlayerSteamID).
			Set("flags", admin.Flags).
			Set("immunity", admin.Immunity).
			Set("server_id", admin.ServerID).
			Set("group_id", admin.GroupID).
			Set("ends", admin.Ends).
			Where(sq.Eq{"admin_id": admin.AdminID})); errUpdate != nil {
			return database.DBErr(errUpdate)
		}

		// Only rewrite the fan-out rows when the flag string actually changed.
		if flagString(oldFlags) != flagString(admin.Flags) {
			return r.replaceAdminFlags(ctx, tx, admin.AdminID, admin.FlagList())
		}

		return nil
	})
}

func flagString(flags *string) string {
	if flags == nil {
		return ""
	}

	return *flags
}

func (r repository) DeleteAdmin(ctx context.Context, adminID int) error {
	return r.db.WrapTx(ctx, func(tx pgx.Tx) error {
		if errAdmin := r.rowExists(ctx, tx, "sa_admins", "admin_id", adminID, ErrAdminNotFound); errAdmin != nil {
			return errAdmin
		}

		if errFlags := r.db.ExecDeleteBuilder(ctx, tx, r.db.
			Builder().
			Delete("sa_admins_flags").
			Where(sq.Eq{"admin_id": adminID})); errFlags != nil {
			return database.DBErr(errFlags)
		}

		// Audit rows survive the admin. They fall back to the sentinel id.
		if errUnbans := r.db.ExecUpdateBuilder(ctx, tx, r.db.
			Builder().
			Update("sa_unbans").
			Set("admin_id", 0).
			Where(sq.Eq{"admin_id": adminID})); errUnbans != nil {
			return database.DBErr(errUnbans)
		}

		if errUnmutes := r.db.ExecUpdateBuilder(ctx, tx, r.db.
			Builder().
			Update("sa_unmutes").
			Set("admin_id", 0).
			Where(sq.Eq{"admin_id": adminID})); errUnmutes != nil {
			return database.DBErr(errUnmutes)
		}

		return database.DBErr(r.db.ExecDeleteBuilder(ctx, tx, r.db.
			Builder().
			Delete("sa_admins").
			Where(sq.Eq{"admin_id": adminID})))
	})
}

func (r repository) Groups(ctx context.Context) ([]Group, error) {
	rows, errQuery := r.db.QueryBuilder(ctx, nil, r.db.
		Builder().
		Select("group_id", "name", "immunity").
		From("sa_groups").
		OrderBy("group_id"))
	if errQuery != nil {
		return nil, database.DBErr(errQuery)
	}

	groups := []Group{}

	for rows.Next() {
		var group Group
		if errScan := rows.Scan(&group.GroupID, &group.Name, &group.Immunity); errScan != nil {
			rows.Close()

			return nil, database.DBErr(errScan)
		}

		groups = append(groups, group)
	}

	rows.Close()

	for idx := range groups {
		flags, errFlags := r.groupFlags(ctx, groups[idx].GroupID)
		if errFlags != nil {
			return nil, errFlags
		}

		serverIDs, errServers := r.groupServers(ctx, groups[idx].GroupID)
		if errServers != nil {
			return nil, errServers
		}

		groups[idx].Flags = flags
		groups[idx].ServerIDs = serverIDs
	}

	return groups, nil
}

func (r repository) groupFlags(ctx context.Context, groupID int) ([]string, error) {
	rows, errQuery := r.db.QueryBuilder(ctx, nil, r.db.
		Builder().
		Select("flag").
		From("sa_groups_flags").
		Where(sq.Eq{"group_id": groupID}).
		OrderBy("group_flag_id"))
	if errQuery != nil {
		return nil, database.DBErr(errQuery)
	}

	defer rows.Close()

	flags := []string{}

	for rows.Next() {
		var flag string
		if errScan := rows.Scan(&flag); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		flags = append(flags, flag)
	}

	return flags, nil
}

func (r repository) groupServers(ctx context.Context, groupID int) ([]int, error) {
	rows, errQuery := r.db.QueryBuilder(ctx, nil, r.db.
		Builder().
		Select("server_id").
		From("sa_groups_servers").
		Where(sq.Eq{"group_id": groupID}).
		OrderBy("group_server_id"))
	if errQuery != nil {
		return nil, database.DBErr(errQuery)
	}

	defer rows.Close()

	serverIDs := []int{}

	for rows.Next() {
		var serverID *int
		if errScan := rows.Scan(&serverID); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		if serverID != nil {
			serverIDs = append(serverIDs, *serverID)
		}
	}

	return serverIDs, nil
}

func (r repository) insertGroupFlags(ctx context.Context, tx pgx.Tx, groupID int, flags []string) error {
	for _, flag := range flags {
		if errInsert := r.db.ExecInsertBuilder(ctx, tx, r.db.
			Builder().
			Insert("sa_groups_flags").
			Columns("group_id", "flag").
			Values(groupID, flag)); errInsert != nil {
			return database.DBErr(errInsert)
		}
	}

	return nil
}

func (r repository) insertGroupServers(ctx context.Context, tx pgx.Tx, groupID int, serverIDs []int) error {
	for _, serverID := range serverIDs {
		if errInsert := r.db.ExecInsertBuilder(ctx, tx, r.db.
			Builder().
			Insert("sa_groups_servers").
			Columns("group_id", "server_id").
			Values(groupID, serverID)); errInsert != nil {
			return database.DBErr(errInsert)
		}
	}

	return nil
}

func (r repository) AddGroup(ctx context.Context, group *Group) error {
	return r.db.WrapTx(ctx, func(tx pgx.Tx) error {
		if errInsert := r.db.ExecInsertBuilderWithReturnValue(ctx, tx, r.db.
			Builder().
			Insert("sa_groups").
			Columns("name", "immunity").
			Values(group.Name, group.Immunity).
			Suffix("RETURNING group_id"), &group.GroupID); errInsert != nil {
			return database.DBErr(errInsert)
		}

		if errFlags := r.insertGroupFlags(ctx, tx, group.GroupID, group.Flags); errFlags != nil {
			return errFlags
		}

		return r.insertGroupServers(ctx, tx, group.GroupID, group.ServerIDs)
	})
}

func (r repository) EditGroup(ctx context.Context, group *Group, flags []string, serverIDs []int) error {
	return r.db.WrapTx(ctx, func(tx pgx.Tx) error {
		if errGroup := r.rowExists(ctx, tx, "sa_groups", "group_id", group.GroupID, ErrGroupNotFound); errGroup != nil {
			return errGroup
		}

		if errUpdate := r.db.ExecUpdateBuilder(ctx, tx, r.db.
			Builder().
			Update("sa_groups").
			Set("name", group.Name).
			Set("immunity", group.Immunity).
			Where(sq.Eq{"group_id": group.GroupID})); errUpdate != nil {
			return database.DBErr(errUpdate)
		}

		if flags != nil {
			if errDelete := r.db.ExecDeleteBuilder(ctx, tx, r.db.
				Builder().
				Delete("sa_groups_flags").
				Where(sq.Eq{"group_id": group.GroupID})); errDelete != nil {
				return database.DBErr(errDelete)
			}

			if errFlags := r.insertGroupFlags(ctx, tx, group.GroupID, flags); errFlags != nil {
				return errFlags
			}
		}

		if serverIDs != nil {
			if errDelete := r.db.ExecDeleteBuilder(ctx, tx, r.db.
				Builder().
				Delete("sa_groups_servers").
				Where(sq.Eq{"group_id": group.GroupID})); errDelete != nil {
				return database.DBErr(errDelete)
			}

			if errServers := r.insertGroupServers(ctx, tx, group.GroupID, serverIDs); errServers != nil {
				return errServers
			}
		}

		return nil
	})
}

func (r repository) DeleteGroup(ctx context.Context, groupID int) error {
	return r.db.WrapTx(ctx, func(tx pgx.Tx) error {
		if errGroup := r.rowExists(ctx, tx, "sa_groups", "group_id", groupID, ErrGroupNotFound); errGroup != nil {
			return errGroup
		}

		if errFlags := r.db.ExecDeleteBuilder(ctx, tx, r.db.
			Builder().
			Delete("sa_groups_flags").
			Where(sq.Eq{"group_id": groupID})); errFlags != nil {
			return database.DBErr(errFlags)
		}

		if errServers := r.db.ExecDeleteBuilder(ctx, tx, r.db.
			Builder().
			Delete("sa_groups_servers").
			Where(sq.Eq{"group_id": groupID})); errServers != nil {
			return database.DBErr(errServers)
		}

		return database.DBErr(r.db.ExecDeleteBuilder(ctx, tx, r.db.
			Builder().
			Delete("sa_groups").
			Where(sq.Eq{"group_id": groupID})))
	})
}
