package handlers

import (
	"context"
)

// UserHandler serves POST /users.
type UserHandler struct{ deps *Deps }

// NewUserHandler constructs a UserHandler.
func NewUserHandler(deps *Deps) *UserHandler { return &UserHandler{deps: deps} }

// CreateUserRequest is the POST /users body.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateUserResponse acknowledges account creation.
type CreateUserResponse struct {
	Username string `json:"username"`
	TimeMS   int64  `json:"time"`
}

// CreateUser registers a new user account.
func (h *UserHandler) CreateUser(ctx context.Context, req CreateUserRequest) (*CreateUserResponse, error) {
	start := h.deps.now()
	if err := h.deps.Users.CreateUser(req.Username, req.Password); err != nil {
		return nil, err
	}
	return &CreateUserResponse{
		Username: req.Username,
		TimeMS:   h.deps.now().Sub(start).Milliseconds(),
	}, nil
}
