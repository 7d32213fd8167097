package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/sarychdb/sarychdb/internal/apierrors"
)

// Wrap wraps a handler function to work as an http.Handler.
// The function must have signature: func(context.Context, In) (*Out, error)
// where In can be unmarshalled from JSON and Out is a struct.
// Struct fields on In can be populated from the request without touching the
// body by tagging them `path:"name"`, `query:"name"`, or `header:"Name"`.
// The /sarych dispatcher does not go through Wrap; it reads its
// username/password headers itself (see sarych.go).
//
// Example:
//
//	type GetRequest struct {
//	    Database string `path:"db"`
//	    Username string `header:"username"`
//	}
//
//	func (h *Handler) Get(ctx context.Context, req GetRequest) (*Response, error)
func Wrap[In any, Out any](fn func(context.Context, In) (*Out, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		body, err := io.ReadAll(r.Body)
		if err2 := r.Body.Close(); err == nil {
			err = err2
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to read request body", "err", err)
			writeError(w, apierrors.BadRequest("failed to read request body"), start)
			return
		}

		var input In
		if len(body) > 0 {
			d := json.NewDecoder(bytes.NewReader(body))
			d.DisallowUnknownFields()
			if err := d.Decode(&input); err != nil {
				slog.ErrorContext(ctx, "failed to decode request body", "err", err)
				writeError(w, apierrors.BadRequest("invalid request body"), start)
				return
			}
		}

		populatePathParams(r, &input)
		populateQueryParams(r, &input)
		populateHeaderParams(r, &input)

		output, err := fn(ctx, input)
		if err != nil {
			writeError(w, err, start)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(output); err != nil {
			slog.ErrorContext(ctx, "failed to encode response", "err", err)
		}
	})
}

func populatePathParams(r *http.Request, input any) {
	elem := structElem(input)
	if !elem.IsValid() {
		return
	}
	typ := elem.Type()
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("path")
		if tag == "" {
			continue
		}
		if v := r.PathValue(tag); v != "" {
			setString(elem.Field(i), v)
		}
	}
}

func populateQueryParams(r *http.Request, input any) {
	elem := structElem(input)
	if !elem.IsValid() {
		return
	}
	query := r.URL.Query()
	typ := elem.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("query")
		if tag == "" {
			continue
		}
		v := query.Get(tag)
		if v == "" {
			continue
		}
		setField(elem.Field(i), v)
	}
}

// populateHeaderParams extracts HTTP header values into fields tagged
// `header:"Header-Name"`.
func populateHeaderParams(r *http.Request, input any) {
	elem := structElem(input)
	if !elem.IsValid() {
		return
	}
	typ := elem.Type()
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("header")
		if tag == "" {
			continue
		}
		if v := r.Header.Get(tag); v != "" {
			setField(elem.Field(i), v)
		}
	}
}

func structElem(input any) reflect.Value {
	val := reflect.ValueOf(input)
	if val.Kind() != reflect.Ptr {
		return reflect.Value{}
	}
	elem := val.Elem()
	if elem.Kind() != reflect.Struct {
		return reflect.Value{}
	}
	return elem
}

func setString(field reflect.Value, v string) {
	if field.Kind() == reflect.String {
		field.SetString(v)
	}
}

func setField(field reflect.Value, v string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(v)
	case reflect.Int:
		if n, err := strconv.Atoi(v); err == nil {
			field.SetInt(int64(n))
		}
	default:
		// other kinds are not populated from query params
	}
}

// writeError maps an error to an HTTP response, using the error's own
// status/kind when it implements apierrors.ErrorWithStatus and otherwise
// falling back to 500/IO_ERROR. The body always carries the literal
// { "error": "<message>", "time": <ms> } shape required by §7, with kind
// and details riding along as additional fields.
func writeError(w http.ResponseWriter, err error, start time.Time) {
	statusCode := http.StatusInternalServerError
	kind := apierrors.KindIO
	var details map[string]any

	if e, ok := err.(apierrors.ErrorWithStatus); ok {
		statusCode = e.StatusCode()
		kind = e.Kind()
		details = e.Details()
	}

	slog.Error("handler error", "err", err, "statusCode", statusCode, "kind", kind)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := map[string]any{
		"error": err.Error(),
		"time":  time.Since(start).Milliseconds(),
		"kind":  kind,
	}
	if len(details) > 0 {
		response["details"] = details
	}
	_ = json.NewEncoder(w).Encode(response)
}
