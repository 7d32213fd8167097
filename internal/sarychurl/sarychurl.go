// Package sarychurl parses the custom sarychdb:// protocol URL consumed by
// the ANY /sarych?url=<target> endpoint (§6). Grounded on the original
// source's parse_sarych_url, extended to also accept the header-only form
// "/database/operation[?query=...]" and to let header credentials win over
// any embedded in the URL (§9 open question 2).
package sarychurl

import (
	"net/url"
	"strings"

	"github.com/sarychdb/sarychdb/internal/apierrors"
)

// Operation is one of the seven operations the /sarych endpoint dispatches.
type Operation string

const (
	OpGet    Operation = "get"
	OpPost   Operation = "post"
	OpPut    Operation = "put"
	OpDelete Operation = "delete"
	OpStats  Operation = "stats"
	OpBrowse Operation = "browse"
	OpList   Operation = "list"
)

var validOperations = map[Operation]bool{
	OpGet: true, OpPost: true, OpPut: true, OpDelete: true,
	OpStats: true, OpBrowse: true, OpList: true,
}

// Target is the parsed form of the url= parameter: which database and
// operation to run, plus any credentials embedded in the sarychdb:// form
// and the textual query, if present.
type Target struct {
	Username  string // "" if the plain-path form was used
	Password  string // "" if the plain-path form was used
	Database  string
	Operation Operation
	Query     string // decoded value of the "query" URL parameter, if any
}

// Parse accepts either "/database/operation[?query=...]" or
// "sarychdb://user@pass/database/operation[?query=...]".
func Parse(raw string) (Target, error) {
	var t Target
	var mainPart string

	switch {
	case strings.HasPrefix(raw, "sarychdb://"):
		withoutScheme := strings.TrimPrefix(raw, "sarychdb://")
		main, query := splitQuery(withoutScheme)
		mainPart = main

		if !strings.Contains(main, "@") {
			return Target{}, apierrors.BadRequest("invalid authentication format, use username@password")
		}
		slash := strings.Index(main, "/")
		if slash < 0 {
			return Target{}, apierrors.BadRequest("invalid format, use sarychdb://username@password/database/operation")
		}
		authPart := main[:slash]
		mainPart = main[slash+1:]

		at := strings.Index(authPart, "@")
		if at < 0 {
			return Target{}, apierrors.BadRequest("invalid authentication format, use username@password")
		}
		t.Username, t.Password = authPart[:at], authPart[at+1:]
		if t.Username == "" || t.Password == "" {
			return Target{}, apierrors.BadRequest("username and password cannot be empty")
		}

		if err := parsePathAndQuery(mainPart, query, &t); err != nil {
			return Target{}, err
		}
		return t, nil

	case strings.HasPrefix(raw, "/"):
		main, query := splitQuery(strings.TrimPrefix(raw, "/"))
		if err := parsePathAndQuery(main, query, &t); err != nil {
			return Target{}, err
		}
		return t, nil

	default:
		return Target{}, apierrors.BadRequest("url must start with sarychdb:// or /")
	}
}

func splitQuery(s string) (main string, query string) {
	if idx := strings.Index(s, "?"); idx >= 0 {
		return s[:idx], s[idx+1:]
	}
	return s, ""
}

func parsePathAndQuery(mainPart, queryString string, t *Target) error {
	parts := strings.Split(mainPart, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return apierrors.BadRequest("invalid format, expected /database/operation")
	}
	t.Database = parts[0]
	op := Operation(strings.ToLower(parts[1]))
	if !validOperations[op] {
		return apierrors.BadRequest("unsupported operation, use: get, post, put, delete, stats, browse, list")
	}
	t.Operation = op

	if queryString != "" {
		values, err := url.ParseQuery(queryString)
		if err != nil {
			return apierrors.BadRequest("invalid query string")
		}
		t.Query = values.Get("query")
	}
	return nil
}

// ApplyHeaderCredentials overwrites any URL-embedded credentials with
// header-supplied ones, per §9 open question 2: headers always win.
func (t *Target) ApplyHeaderCredentials(headerUsername, headerPassword string) {
	if headerUsername != "" {
		t.Username = headerUsername
	}
	if headerPassword != "" {
		t.Password = headerPassword
	}
}
