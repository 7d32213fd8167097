package handlers

import (
	"context"

	"github.com/invopop/jsonschema"
)

// SchemaHandler serves GET /schema.
type SchemaHandler struct{ deps *Deps }

// NewSchemaHandler constructs a SchemaHandler.
func NewSchemaHandler(deps *Deps) *SchemaHandler { return &SchemaHandler{deps: deps} }

// listQueryShape documents the header-borne list/browse parameters as a
// struct purely so jsonschema.Reflect has something to introspect; it is
// never marshalled to or from JSON directly (§6.1).
type listQueryShape struct {
	Page      int            `json:"page,omitempty"`
	Limit     int            `json:"limit,omitempty"`
	SortBy    string         `json:"sortBy,omitempty"`
	SortOrder string         `json:"sortOrder,omitempty" jsonschema:"enum=asc,enum=desc"`
	Filters   map[string]any `json:"filters,omitempty"`
}

// SchemaResponse is a JSON Schema document for one wire shape.
type SchemaResponse = jsonschema.Schema

// Schema returns a combined JSON Schema, via github.com/invopop/jsonschema,
// describing the POST /users and POST /databases request bodies and the
// list/browse parameters. Response shapes and the /sarych record bodies are
// not included.
func (h *SchemaHandler) Schema(ctx context.Context, _ struct{}) (*jsonschema.Schema, error) {
	reflector := &jsonschema.Reflector{DoNotReference: false}
	schema := reflector.Reflect(&struct {
		CreateUser     CreateUserRequest     `json:"create_user"`
		CreateDatabase CreateDatabaseRequest `json:"create_database"`
		ListQuery      listQueryShape        `json:"list_query"`
	}{})
	return schema, nil
}
