package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sarychdb/sarychdb/internal/crud"
	"github.com/sarychdb/sarychdb/internal/server/handlers"
	"github.com/sarychdb/sarychdb/internal/storage"
	"github.com/sarychdb/sarychdb/internal/users"
)

func newTestDeps(t *testing.T) *handlers.Deps {
	t.Helper()
	dir := t.TempDir()
	registry, err := users.NewRegistry(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := registry.CreateUser("alice", "pw"); err != nil {
		t.Fatal(err)
	}

	store := storage.NewFileStore()
	fileCache := storage.NewFileCache(store, 300*time.Second)
	searchCache := storage.NewSearchCache(300*time.Second, 100)
	engine := crud.New(store, fileCache, searchCache)

	if err := registry.CreateDatabase("alice", "notes", func(path string) error {
		return store.Create(path)
	}); err != nil {
		t.Fatal(err)
	}

	return &handlers.Deps{Users: registry, Engine: engine, Store: store}
}

func doSarych(handler http.Handler, method, url, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/sarych?url="+url, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSarychInsertThenGet(t *testing.T) {
	deps := newTestDeps(t)
	handler := sarychHandler(deps)
	creds := map[string]string{"username": "alice", "password": "pw"}

	rec := doSarych(handler, http.MethodPost, "/notes/post", `{"name":"Ada"}`, creds)
	if rec.Code != http.StatusOK {
		t.Fatalf("insert failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doSarych(handler, http.MethodGet, "/notes/get?query=Ada", "", creds)
	if rec.Code != http.StatusOK {
		t.Fatalf("get failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp sarychResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Records) != 1 || resp.Records[0]["name"] != "Ada" {
		t.Errorf("expected one matching record, got %+v", resp.Records)
	}
}

func TestSarychForbiddenForOtherUsersDatabase(t *testing.T) {
	deps := newTestDeps(t)
	if err := deps.Users.CreateUser("bob", "pw"); err != nil {
		t.Fatal(err)
	}
	handler := sarychHandler(deps)

	rec := doSarych(handler, http.MethodGet, "/notes/get", "", map[string]string{"username": "bob", "password": "pw"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for another user's database, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSarychAuthFailedForWrongPassword(t *testing.T) {
	deps := newTestDeps(t)
	handler := sarychHandler(deps)

	rec := doSarych(handler, http.MethodGet, "/notes/get", "", map[string]string{"username": "alice", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", rec.Code)
	}
}

func TestSarychUpdateByIDPreservesOthers(t *testing.T) {
	deps := newTestDeps(t)
	handler := sarychHandler(deps)
	creds := map[string]string{"username": "alice", "password": "pw"}

	r1 := doSarych(handler, http.MethodPost, "/notes/post", `{"v":1}`, creds)
	var inserted1 sarychResponse
	json.NewDecoder(r1.Body).Decode(&inserted1)
	id1 := inserted1.Record.ID()

	doSarych(handler, http.MethodPost, "/notes/post", `{"v":2}`, creds)

	putHeaders := map[string]string{"username": "alice", "password": "pw", "idUpdate": id1}
	rec := doSarych(handler, http.MethodPut, "/notes/put", `{"v":9}`, putHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}

	getRec := doSarych(handler, http.MethodGet, "/notes/get", "", creds)
	var page sarychResponse
	json.NewDecoder(getRec.Body).Decode(&page)
	for _, r := range page.Records {
		if r.ID() == id1 {
			if r["v"] != float64(9) {
				t.Errorf("expected updated record v=9, got %v", r["v"])
			}
			if _, ok := r["_updated_at"]; !ok {
				t.Error("expected _updated_at to be stamped")
			}
		} else if _, ok := r["_updated_at"]; ok {
			t.Error("expected other record to remain untouched")
		}
	}
}
