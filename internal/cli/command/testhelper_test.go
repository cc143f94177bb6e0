package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/yndnr/hostdeck-go/internal/core/domain"
	"github.com/yndnr/hostdeck-go/pkg/credential"
)

const testPassword = "Secret#123"

type account struct {
	password string // transformed
	identity domain.Identity
}

// backend is an in-process hostdeck API speaking the response envelope.
type backend struct {
	*httptest.Server

	mu        sync.Mutex
	accounts  map[string]*account
	access    map[string]string // access credential -> username
	renewal   map[string]string // renewal credential -> username
	seq       int
	failRenew bool
	renewals  int
	logouts   int
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{
		accounts: map[string]*account{
			"alice": {
				password: credential.Transform(testPassword),
				identity: domain.Identity{ID: 1, Username: "alice", Email: "alice@example.com", Role: domain.RoleAdmin},
			},
			"bob": {
				password: credential.Transform(testPassword),
				identity: domain.Identity{ID: 2, Username: "bob", Email: "bob@example.com", Role: domain.RoleUser},
			},
		},
		access:  make(map[string]string),
		renewal: make(map[string]string),
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": status < 400,
		"message": message,
		"data":    data,
	})
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch r.URL.Path {
	case "/api/v1/auth/login":
		var req struct{ Username, Password string }
		json.NewDecoder(r.Body).Decode(&req)
		acct, ok := b.accounts[req.Username]
		if !ok || acct.password != req.Password {
			writeEnvelope(w, http.StatusUnauthorized, "invalid username or password", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "ok", b.grant(acct))
		return

	case "/api/v1/auth/register":
		var req struct{ Username, Email, Password string }
		json.NewDecoder(r.Body).Decode(&req)
		if _, taken := b.accounts[req.Username]; taken {
			writeEnvelope(w, http.StatusConflict, "username already exists", nil)
			return
		}
		acct := &account{
			password: req.Password,
			identity: domain.Identity{ID: int64(len(b.accounts) + 1), Username: req.Username, Email: req.Email, Role: domain.RoleUser},
		}
		b.accounts[req.Username] = acct
		writeEnvelope(w, http.StatusCreated, "ok", b.grant(acct))
		return

	case "/api/v1/refresh-token":
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		b.renewals++
		user, ok := b.renewal[req.RefreshToken]
		if !ok || b.failRenew {
			writeEnvelope(w, http.StatusUnauthorized, "invalid refresh token", nil)
			return
		}
		b.seq++
		access := fmt.Sprintf("access-%s-%d", user, b.seq)
		b.access[access] = user
		writeEnvelope(w, http.StatusOK, "ok", map[string]any{"token": access})
		return
	}

	user, ok := b.access[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
	if !ok {
		writeEnvelope(w, http.StatusUnauthorized, "token expired", nil)
		return
	}
	acct := b.accounts[user]

	switch r.URL.Path {
	case "/api/v1/auth/logout":
		b.logouts++
		writeEnvelope(w, http.StatusOK, "ok", nil)
	case "/api/v1/profile":
		if r.Method == http.MethodPut {
			var req struct{ Email string }
			json.NewDecoder(r.Body).Decode(&req)
			acct.identity.Email = req.Email
		}
		writeEnvelope(w, http.StatusOK, "ok", acct.identity)
	case "/api/v1/change-password":
		var req struct {
			Current string `json:"current_password"`
			New     string `json:"new_password"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Current != acct.password {
			writeEnvelope(w, http.StatusBadRequest, "current password is incorrect", nil)
			return
		}
		acct.password = req.New
		writeEnvelope(w, http.StatusOK, "ok", nil)
	case "/api/v1/servers":
		writeEnvelope(w, http.StatusOK, "ok", map[string]any{
			"servers": []map[string]any{
				{"id": 1, "name": "web-01", "host": "10.0.0.11", "port": 22, "status": "online"},
				{"id": 2, "name": "db-01", "host": "10.0.0.21", "port": 22, "status": "offline"},
			},
			"pagination": map[string]any{"page": 1, "limit": 20, "total": 2},
		})
	case "/api/v1/admin/users":
		if acct.identity.Role != domain.RoleAdmin {
			writeEnvelope(w, http.StatusForbidden, "admin only", nil)
			return
		}
		users := make([]domain.Identity, 0, len(b.accounts))
		for _, name := range []string{"alice", "bob"} {
			users = append(users, b.accounts[name].identity)
		}
		writeEnvelope(w, http.StatusOK, "ok", map[string]any{
			"users":      users,
			"pagination": map[string]any{"page": 1, "limit": 20, "total": len(users)},
		})
	default:
		writeEnvelope(w, http.StatusNotFound, "not found", nil)
	}
}

// grant issues a fresh credential pair. Callers hold b.mu.
func (b *backend) grant(acct *account) map[string]any {
	b.seq++
	access := fmt.Sprintf("access-%s-%d", acct.identity.Username, b.seq)
	renewal := fmt.Sprintf("renew-%s-%d", acct.identity.Username, b.seq)
	b.access[access] = acct.identity.Username
	b.renewal[renewal] = acct.identity.Username
	return map[string]any{
		"token":         access,
		"refresh_token": renewal,
		"user":          acct.identity,
	}
}

// expireAccess invalidates every issued access credential.
func (b *backend) expireAccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access = make(map[string]string)
}

func (b *backend) setFailRenew(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failRenew = fail
}

func (b *backend) counts() (renewals, logouts int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renewals, b.logouts
}

// console runs the CLI as separate processes would, sharing one state
// directory between runs.
type console struct {
	t       *testing.T
	server  string
	dir     string
	cfgPath string
}

func newConsole(t *testing.T, server string) *console {
	t.Helper()
	dir := t.TempDir()
	return &console{
		t:       t,
		server:  server,
		dir:     dir,
		cfgPath: filepath.Join(dir, "cli.yaml"),
	}
}

type runResult struct {
	stdout string
	stderr string
	err    error
}

// run executes one invocation with input as stdin.
func (c *console) run(input string, args ...string) runResult {
	c.t.Helper()

	app := App()
	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader(input)

	full := []string{
		"hostdeck-cli",
		"--config", c.cfgPath,
		"--server", c.server,
		"--state-dir", filepath.Join(c.dir, "state"),
		"--log-level", "error",
	}
	full = append(full, args...)

	err := Execute(context.Background(), app, full)
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// mustRun fails the test when the invocation fails.
func (c *console) mustRun(input string, args ...string) runResult {
	c.t.Helper()
	res := c.run(input, args...)
	if res.err != nil {
		c.t.Fatalf("%v: unexpected error: %v\nstderr:\n%s", args, res.err, res.stderr)
	}
	return res
}

func (c *console) login(username string) {
	c.t.Helper()
	c.mustRun("", "login", "-u", username, "-p", testPassword)
}
