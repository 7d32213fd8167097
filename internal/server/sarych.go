package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/sarychdb/sarychdb/internal/apierrors"
	"github.com/sarychdb/sarychdb/internal/crud"
	"github.com/sarychdb/sarychdb/internal/listing"
	"github.com/sarychdb/sarychdb/internal/match"
	"github.com/sarychdb/sarychdb/internal/record"
	"github.com/sarychdb/sarychdb/internal/sarychurl"
	"github.com/sarychdb/sarychdb/internal/server/handlers"
)

// sarychResponse is the single response envelope for every /sarych
// operation: each operation populates only the fields relevant to it, per
// §6's uniform "{ ..., time }" body shape.
type sarychResponse struct {
	Record     record.Record      `json:"record,omitempty"`
	Records    []record.Record    `json:"records,omitempty"`
	Count      *int               `json:"count,omitempty"`
	Stats      *crud.Stats        `json:"stats,omitempty"`
	Pagination *listing.Pagination `json:"pagination,omitempty"`
	TimeMS     int64              `json:"time"`
}

// sarychHandler dispatches ANY /sarych?url=<target> against the CRUD Engine
// and List/Browse Pipeline (§6). It bypasses server.Wrap: the request body's
// shape (bare record, bare patch) varies per operation and cannot be
// expressed as one fixed struct.
func sarychHandler(deps *handlers.Deps) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		target, err := sarychurl.Parse(r.URL.Query().Get("url"))
		if err != nil {
			writeError(w, err, start)
			return
		}
		target.ApplyHeaderCredentials(r.Header.Get("username"), r.Header.Get("password"))

		if target.Username == "" || target.Password == "" {
			writeError(w, apierrors.AuthFailed(), start)
			return
		}
		if err := deps.Users.Authenticate(target.Username, target.Password); err != nil {
			writeError(w, err, start)
			return
		}
		has, err := deps.Users.HasDatabase(target.Username, target.Database)
		if err != nil {
			writeError(w, err, start)
			return
		}
		if !has {
			writeError(w, apierrors.Forbidden("database does not belong to this user"), start)
			return
		}
		path := deps.Users.DatabasePath(target.Username, target.Database)

		mode := match.ParseMode(r.Header.Get("queryType"))
		resp, err := dispatchOperation(r, deps.Engine, path, target, mode)
		if err != nil {
			writeError(w, err, start)
			return
		}
		resp.TimeMS = time.Since(start).Milliseconds()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	})
}

func dispatchOperation(r *http.Request, engine *crud.Engine, path string, target sarychurl.Target, mode match.Mode) (*sarychResponse, error) {
	switch target.Operation {
	case sarychurl.OpPost:
		fields, err := decodeObjectBody(r)
		if err != nil {
			return nil, err
		}
		rec, err := engine.Insert(path, fields)
		if err != nil {
			return nil, err
		}
		return &sarychResponse{Record: rec}, nil

	case sarychurl.OpGet:
		records, err := engine.Get(r.Context(), path, target.Query, mode)
		if err != nil {
			return nil, err
		}
		return &sarychResponse{Records: records}, nil

	case sarychurl.OpPut:
		patch, err := decodeObjectBody(r)
		if err != nil {
			return nil, err
		}
		var count int
		if idUpdate := r.Header.Get("idUpdate"); idUpdate != "" {
			count, err = engine.UpdateByID(path, idUpdate, patch)
		} else {
			count, err = engine.UpdateByQuery(path, target.Query, mode, patch)
		}
		if err != nil {
			return nil, err
		}
		return &sarychResponse{Count: &count}, nil

	case sarychurl.OpDelete:
		count, err := engine.DeleteByQuery(path, target.Query, mode)
		if err != nil {
			return nil, err
		}
		return &sarychResponse{Count: &count}, nil

	case sarychurl.OpStats:
		stats, err := engine.Stats(path)
		if err != nil {
			return nil, err
		}
		return &sarychResponse{Stats: &stats}, nil

	case sarychurl.OpBrowse:
		all, err := engine.Records(path)
		if err != nil {
			return nil, err
		}
		params, err := listingParams(r)
		if err != nil {
			return nil, err
		}
		page, pagination, err := listing.Browse(all, params)
		if err != nil {
			return nil, err
		}
		return &sarychResponse{Records: page, Pagination: &pagination}, nil

	case sarychurl.OpList:
		all, err := engine.Records(path)
		if err != nil {
			return nil, err
		}
		params, err := listingParams(r)
		if err != nil {
			return nil, err
		}
		page, pagination, err := listing.List(all, params)
		if err != nil {
			return nil, err
		}
		return &sarychResponse{Records: page, Pagination: &pagination}, nil

	default:
		return nil, apierrors.BadRequest("unsupported operation")
	}
}

func decodeObjectBody(r *http.Request) (map[string]any, error) {
	defer r.Body.Close()
	var fields map[string]any
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&fields); err != nil {
		return nil, apierrors.BadRequest("request body must be a JSON object")
	}
	return fields, nil
}

func listingParams(r *http.Request) (listing.Params, error) {
	p := listing.Params{
		SortBy:    r.Header.Get("sortBy"),
		SortOrder: r.Header.Get("sortOrder"),
	}
	if v := r.Header.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Limit = n
		}
	}
	if v := r.Header.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Page = n
		}
	}
	if v := r.Header.Get("filters"); v != "" {
		var filters map[string]any
		if err := json.Unmarshal([]byte(v), &filters); err != nil {
			return listing.Params{}, apierrors.BadRequest("filters header must be a JSON object")
		}
		p.Filters = filters
	}
	return p, nil
}
