package handlers

import (
	"context"

	"github.com/sarychdb/sarychdb/internal/apierrors"
)

// DatabaseHandler serves POST /databases and GET /databases.
type DatabaseHandler struct{ deps *Deps }

// NewDatabaseHandler constructs a DatabaseHandler.
func NewDatabaseHandler(deps *Deps) *DatabaseHandler { return &DatabaseHandler{deps: deps} }

// CreateDatabaseRequest is the POST /databases body.
type CreateDatabaseRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
}

// CreateDatabaseResponse acknowledges database creation.
type CreateDatabaseResponse struct {
	DBName string `json:"db_name"`
	TimeMS int64  `json:"time"`
}

// CreateDatabase authenticates username/password and creates an empty
// database file owned by that user.
func (h *DatabaseHandler) CreateDatabase(ctx context.Context, req CreateDatabaseRequest) (*CreateDatabaseResponse, error) {
	start := h.deps.now()
	if err := h.deps.Users.Authenticate(req.Username, req.Password); err != nil {
		return nil, err
	}

	err := h.deps.Users.CreateDatabase(req.Username, req.DBName, func(path string) error {
		return h.deps.Store.Create(path)
	})
	if err != nil {
		return nil, err
	}

	return &CreateDatabaseResponse{
		DBName: req.DBName,
		TimeMS: h.deps.now().Sub(start).Milliseconds(),
	}, nil
}

// ListDatabasesRequest is the GET /databases query.
type ListDatabasesRequest struct {
	Username string `query:"username"`
	Password string `query:"password"`
}

// ListDatabasesResponse lists the caller's databases.
type ListDatabasesResponse struct {
	Databases []string `json:"databases"`
	TimeMS    int64    `json:"time"`
}

// ListDatabases authenticates username/password and returns the databases
// owned by that user.
func (h *DatabaseHandler) ListDatabases(ctx context.Context, req ListDatabasesRequest) (*ListDatabasesResponse, error) {
	start := h.deps.now()
	if req.Username == "" || req.Password == "" {
		return nil, apierrors.BadRequest("username and password are required")
	}
	if err := h.deps.Users.Authenticate(req.Username, req.Password); err != nil {
		return nil, err
	}
	dbs, err := h.deps.Users.ListDatabases(req.Username)
	if err != nil {
		return nil, err
	}
	return &ListDatabasesResponse{
		Databases: dbs,
		TimeMS:    h.deps.now().Sub(start).Milliseconds(),
	}, nil
}
