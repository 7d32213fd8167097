package server

import (
	"log/slog"
	"net/http"

	"github.com/sarychdb/sarychdb/internal/server/handlers"
	"github.com/sarychdb/sarychdb/internal/server/ratelimit"
)

// NewRouter builds the SarychDB HTTP surface (§6): user/database management,
// the unified /sarych dispatcher, and the /schema introspection endpoint,
// wrapped in rate limiting and request logging middleware. Grounded on the
// teacher's router.go pattern of one mux.HandleFunc per resource.
func NewRouter(deps *handlers.Deps, limiter *ratelimit.Limiter, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	userHandler := handlers.NewUserHandler(deps)
	databaseHandler := handlers.NewDatabaseHandler(deps)
	schemaHandler := handlers.NewSchemaHandler(deps)

	mux.Handle("POST /users", Wrap(userHandler.CreateUser))
	mux.Handle("POST /databases", Wrap(databaseHandler.CreateDatabase))
	mux.Handle("GET /databases", Wrap(databaseHandler.ListDatabases))
	mux.Handle("GET /schema", Wrap(schemaHandler.Schema))
	mux.Handle("/sarych", sarychHandler(deps))

	var handler http.Handler = mux
	handler = RateLimitMiddleware(limiter)(handler)
	handler = RequestLogger(logger)(handler)
	return handler
}
