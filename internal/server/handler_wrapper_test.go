package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sarychdb/sarychdb/internal/apierrors"
)

type wrapTestRequest struct {
	ID       string `path:"id"`
	Limit    int    `query:"limit"`
	Username string `header:"username"`
}

type wrapTestResponse struct {
	Echo string `json:"echo"`
}

func TestWrapPopulatesPathQueryAndHeaderFields(t *testing.T) {
	var captured wrapTestRequest
	fn := func(ctx context.Context, req wrapTestRequest) (*wrapTestResponse, error) {
		captured = req
		return &wrapTestResponse{Echo: req.ID}, nil
	}

	mux := http.NewServeMux()
	mux.Handle("GET /items/{id}", Wrap(fn))

	req := httptest.NewRequest(http.MethodGet, "/items/abc?limit=5", nil)
	req.Header.Set("username", "alice")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if captured.ID != "abc" || captured.Limit != 5 || captured.Username != "alice" {
		t.Errorf("unexpected captured request: %+v", captured)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp wrapTestResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Echo != "abc" {
		t.Errorf("expected echo=abc, got %q", resp.Echo)
	}
}

func TestWrapMapsErrorWithStatusToHTTPStatus(t *testing.T) {
	fn := func(ctx context.Context, req wrapTestRequest) (*wrapTestResponse, error) {
		return nil, apierrors.NotFound("widget")
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	Wrap(fn).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	errMsg, ok := body["error"].(string)
	if !ok {
		t.Fatalf("expected error to be a string, got %v", body)
	}
	if errMsg != "widget not found" {
		t.Errorf("expected error message %q, got %q", "widget not found", errMsg)
	}
	if _, ok := body["time"].(float64); !ok {
		t.Fatalf("expected numeric time field in body, got %v", body)
	}
	if body["kind"] != string(apierrors.KindNotFound) {
		t.Errorf("expected kind NOT_FOUND, got %v", body["kind"])
	}
}
