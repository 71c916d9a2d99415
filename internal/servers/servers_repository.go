package servers

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/banssharp/banssharp/internal/database"
)

type repository struct {
	db database.Database
}

func NewRepository(database database.Database) Store {
	return &repository{db: database}
}

func (r repository) List(ctx context.Context) ([]Server, error) {
	rows, errQuery := r.db.QueryBuilder(ctx, nil, r.db.
		Builder().
		Select("server_id", "hostname", "rcon_password", "address").
		From("sa_servers").
		OrderBy("server_id"))
	if errQuery != nil {
		return nil, database.DBErr(errQuery)
	}

	defer rows.Close()

	servers := []Server{}

	for rows.Next() {
		var server Server
		if errScan := rows.Scan(&server.ServerID, &server.Hostname, &server.RCONPassword,
			&server.Address); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		servers = append(servers, server)
	}

	return servers, nil
}

func (r repository) GetByID(ctx context.Context, serverID int) (Server, error) {
	row, errRow := r.db.QueryRowBuilder(ctx, nil, r.db.
		Builder().
		Select("server_id", "hostname", "rcon_password", "address").
		From("sa_servers").
		Where(sq.Eq{"server_id": serverID}))
	if errRow != nil {
		return Server{}, database.DBErr(errRow)
	}

	var server Server
	if errScan := row.Scan(&server.ServerID, &server.Hostname, &server.RCONPassword,
		&server.Address); errScan != nil {
		return Server{}, database.DBErr(errScan)
	}

	return server, nil
}

func (r repository) Save(ctx context.Context, server *Server) error {
	if server.ServerID > 0 {
		return database.DBErr(r.db.ExecUpdateBuilder(ctx, nil, r.db.
			Builder().
			Update("sa_servers").
			Set("hostname", server.Hostname).
			Set("rcon_password", server.RCONPassword).
			Set("address", server.Address).
			Where(sq.Eq{"server_id": server.ServerID})))
	}

	query, args, errQuery := r.db.
		Builder().
		Insert("sa_servers").
		Columns("hostname", "rcon_password", "address").
		Values(server.Hostname, server.RCONPassword, server.Address).
		Suffix("RETURNING server_id").
		ToSql()
	if errQuery != nil {
		return database.DBErr(errQuery)
	}

	return database.DBErr(r.db.QueryRow(ctx, nil, query, args...).Scan(&server.ServerID))
}

func (r repository) Delete(ctx context.Context, serverID int) error {
	return database.DBErr(r.db.ExecDeleteBuilder(ctx, nil, r.db.
		Builder().
		Delete("sa_servers").
		Where(sq.Eq{"server_id": serverID})))
}
