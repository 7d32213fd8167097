// Package handlers implements the HTTP boundary of SarychDB: request/response
// structs consumed by server.Wrap and the operations they delegate to the
// core (users, crud, listing). Grounded on the teacher's handlers package
// layout (one file per resource, a *Handler struct per file holding the
// dependency it needs).
package handlers

import (
	"time"

	"github.com/sarychdb/sarychdb/internal/crud"
	"github.com/sarychdb/sarychdb/internal/storage"
	"github.com/sarychdb/sarychdb/internal/users"
)

// Deps bundles every core collaborator a handler may need. A single Deps is
// constructed at startup and shared by every *Handler, mirroring the
// teacher's pattern of handlers holding a *storage.FileStore.
type Deps struct {
	Users   *users.Registry
	Engine  *crud.Engine
	Store   *storage.FileStore
	Clock   func() time.Time
	DataDir string
}

func (d *Deps) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}
