package users

import (
	"os"
	"testing"

	"github.com/sarychdb/sarychdb/internal/apierrors"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestCreateUserThenAuthenticate(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.CreateUser("admin", "pw"); err != nil {
		t.Fatal(err)
	}
	if err := r.Authenticate("admin", "pw"); err != nil {
		t.Errorf("expected authentication to succeed, got %v", err)
	}
	if err := r.Authenticate("admin", "wrong"); err == nil {
		t.Error("expected authentication failure for wrong password")
	}
	if err := r.Authenticate("nobody", "pw"); err == nil {
		t.Error("expected authentication failure for unknown user")
	}
}

func TestCreateUserDuplicateConflict(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.CreateUser("admin", "pw"); err != nil {
		t.Fatal(err)
	}
	err := r.CreateUser("admin", "pw2")
	if ews, ok := err.(apierrors.ErrorWithStatus); !ok || ews.Kind() != apierrors.KindConflict {
		t.Errorf("expected Conflict, got %v", err)
	}
}

func TestCreateUserRejectsInvalidNames(t *testing.T) {
	r := newTestRegistry(t)
	for _, bad := range []string{"", "with space", "a/b", `a\b`} {
		if err := r.CreateUser(bad, "pw"); err == nil {
			t.Errorf("expected rejection of invalid username %q", bad)
		}
	}
}

func TestCreateDatabaseCreatesFileAndRegistersIt(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.CreateUser("admin", "pw"); err != nil {
		t.Fatal(err)
	}

	created := false
	err := r.CreateDatabase("admin", "db1", func(path string) error {
		created = true
		return os.WriteFile(path, []byte("[]"), 0o644)
	})
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("expected createFile callback to run")
	}

	has, err := r.HasDatabase("admin", "db1")
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Error("expected db1 to be registered")
	}
}

func TestCreateDatabaseDuplicateConflict(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.CreateUser("admin", "pw"); err != nil {
		t.Fatal(err)
	}
	noop := func(string) error { return nil }
	if err := r.CreateDatabase("admin", "db1", noop); err != nil {
		t.Fatal(err)
	}
	if err := r.CreateDatabase("admin", "db1", noop); err == nil {
		t.Error("expected Conflict for duplicate database name")
	}
}

func TestUserIsolationAcrossSameDatabaseName(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.CreateUser("alice", "pw"); err != nil {
		t.Fatal(err)
	}
	if err := r.CreateUser("bob", "pw"); err != nil {
		t.Fatal(err)
	}
	noop := func(string) error { return nil }
	if err := r.CreateDatabase("alice", "shared", noop); err != nil {
		t.Fatal(err)
	}

	has, err := r.HasDatabase("bob", "shared")
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Error("bob must not see alice's database of the same name")
	}
	if r.DatabasePath("alice", "shared") == r.DatabasePath("bob", "shared") {
		t.Error("expected distinct file paths per user")
	}
}
