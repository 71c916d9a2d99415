package servers

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrServerNotFound = errors.New("server does not exist")
	ErrAddressMissing = errors.New("server address is required")
)

type Server struct {
	ServerID     int     `json:"id"`
	Hostname     *string `json:"hostname"`
	RCONPassword *string `json:"rcon_password,omitempty"`
	Address      string  `json:"address"`
}

// Option is the dropdown shape the dashboard expects. The nil id row means
// all servers.
type Option struct {
	ID       *int   `json:"id"`
	Hostname string `json:"hostname"`
}

func (s Server) Label() string {
	if s.Hostname != nil && *s.Hostname != "" {
		return *s.Hostname
	}

	return fmt.Sprintf("Server %d", s.ServerID)
}

type Store interface {
	List(ctx context.Context) ([]Server, error)
	GetByID(ctx context.Context, serverID int) (Server, error)
	Save(ctx context.Context, server *Server) error
	Delete(ctx context.Context, serverID int) error
}

type Servers struct {
	repository Store
}

func NewServers(repository Store) Servers {
	return Servers{repository: repository}
}

func (s Servers) List(ctx context.Context) ([]Server, error) {
	return s.repository.List(ctx)
}

// Options prepends the synthetic ALL row to the server list.
func (s Servers) Options(ctx context.Context) ([]Option, error) {
	servers, errServers := s.repository.List(ctx)
	if errServers != nil {
		return nil, errServers
	}

	options := []Option{{ID: nil, Hostname: "ALL"}}

	for _, server := range servers {
		id := server.ServerID
		options = append(options, Option{ID: &id, Hostname: server.Label()})
	}

	return options, nil
}

func (s Servers) GetByID(ctx context.Context, serverID int) (Server, error) {
	return s.repository.GetByID(ctx, serverID)
}

func (s Servers) Save(ctx context.Context, server *Server) error {
	if server.Address == "" {
		return ErrAddressMissing
	}

	return s.repository.Save(ctx, server)
}

func (s Servers) Delete(ctx context.Context, serverID int) error {
	return s.repository.Delete(ctx, serverID)
}
