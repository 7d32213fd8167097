// Package users implements the user registry: account creation,
// authentication, and per-user database bookkeeping backed by a single
// JSON registry file plus one directory per user (§6 persisted state
// layout). Grounded on the original source's AuthService (users.json,
// bcrypt) and the teacher's bcrypt-based user_service.go.
package users

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/sarychdb/sarychdb/internal/apierrors"
)

// User is one entry in the registry: a username, its bcrypt password hash,
// and the names of the databases it owns.
type User struct {
	Username     string   `json:"username"`
	PasswordHash string   `json:"password_hash"`
	Databases    []string `json:"databases"`
}

// Registry is the process-wide user directory, persisted to a single JSON
// file and guarded by one lock (§5). baseDir is the root under which
// users.json and users/<username>/ live.
type Registry struct {
	mu      sync.Mutex
	path    string
	baseDir string
}

// NewRegistry opens (creating if absent) the registry file at
// <baseDir>/users.json.
func NewRegistry(baseDir string) (*Registry, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, apierrors.IOError("failed to create base directory", err)
	}
	r := &Registry{path: filepath.Join(baseDir, "users.json"), baseDir: baseDir}
	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		if err := r.save(map[string]*User{}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// UserDir returns the directory owned by username.
func (r *Registry) UserDir(username string) string {
	return filepath.Join(r.baseDir, "users", username)
}

// DatabasePath returns the absolute path of username's dbName database file.
func (r *Registry) DatabasePath(username, dbName string) string {
	return filepath.Join(r.UserDir(username), dbName+".json")
}

func (r *Registry) load() (map[string]*User, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, apierrors.IOError("failed to read user registry", err)
	}
	out := map[string]*User{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, apierrors.Corrupt(r.path)
		}
	}
	return out, nil
}

func (r *Registry) save(users map[string]*User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return apierrors.IOError("failed to marshal user registry", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apierrors.IOError("failed to write user registry", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return apierrors.IOError("failed to rename user registry into place", err)
	}
	return nil
}

// validateName rejects names containing spaces or path separators, mirroring
// the original source's username/db_name validation.
func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, " /\\") {
		return apierrors.BadRequest("invalid name: cannot be empty or contain spaces or path separators")
	}
	return nil
}

// CreateUser registers a new user, hashing password with bcrypt and creating
// their directory. Fails with Conflict if the username is taken.
func (r *Registry) CreateUser(username, password string) error {
	if err := validateName(username); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	registry, err := r.load()
	if err != nil {
		return err
	}
	if _, exists := registry[username]; exists {
		return apierrors.Conflict("user already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apierrors.IOError("failed to hash password", err)
	}

	if err := os.MkdirAll(r.UserDir(username), 0o755); err != nil {
		return apierrors.IOError("failed to create user directory", err)
	}

	registry[username] = &User{Username: username, PasswordHash: string(hash)}
	return r.save(registry)
}

// Authenticate verifies username/password, returning AuthFailed if the user
// is unknown or the password does not match.
func (r *Registry) Authenticate(username, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	registry, err := r.load()
	if err != nil {
		return err
	}
	u, ok := registry[username]
	if !ok {
		return apierrors.AuthFailed()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return apierrors.AuthFailed()
	}
	return nil
}

// CreateDatabase registers dbName under username and creates its empty `[]`
// JSON file. Fails with Conflict if the database already exists for this
// user, or NotFound if the user doesn't exist.
func (r *Registry) CreateDatabase(username, dbName string, createFile func(path string) error) error {
	if err := validateName(dbName); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	registry, err := r.load()
	if err != nil {
		return err
	}
	u, ok := registry[username]
	if !ok {
		return apierrors.NotFound("user")
	}
	for _, existing := range u.Databases {
		if existing == dbName {
			return apierrors.Conflict("database already exists for this user")
		}
	}

	if err := createFile(r.DatabasePath(username, dbName)); err != nil {
		return err
	}

	u.Databases = append(u.Databases, dbName)
	return r.save(registry)
}

// ListDatabases returns the database names owned by username.
func (r *Registry) ListDatabases(username string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	registry, err := r.load()
	if err != nil {
		return nil, err
	}
	u, ok := registry[username]
	if !ok {
		return nil, apierrors.NotFound("user")
	}
	return u.Databases, nil
}

// HasDatabase reports whether username owns a database named dbName. This
// is the enforcement point for §3 invariant 5 (cross-user isolation) and
// the Forbidden error kind: a request naming another user's database name
// is rejected before any file is touched.
func (r *Registry) HasDatabase(username, dbName string) (bool, error) {
	dbs, err := r.ListDatabases(username)
	if err != nil {
		return false, err
	}
	for _, d := range dbs {
		if d == dbName {
			return true, nil
		}
	}
	return false, nil
}
