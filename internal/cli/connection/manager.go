package connection

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yndnr/hostdeck-go/internal/infra/tlsroots"
)

// ErrNotConnected is returned when no backend has been selected.
var ErrNotConnected = errors.New("connection: not connected")

// Connection describes the backend the console talks to.
type Connection struct {
	Server    string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
	// CAFile adds a PEM bundle to the system roots for https servers.
	CAFile string
}

// Manager owns the gateway for the current backend.
type Manager struct {
	store   CredentialStore
	opts    []Option
	current *Connection
	client  *HTTPClient
	api     *AuthAPI
}

// NewManager creates a manager whose gateways use store and opts.
func NewManager(store CredentialStore, opts ...Option) *Manager {
	return &Manager{store: store, opts: opts}
}

// Connect builds the gateway for conn and makes it current.
func (m *Manager) Connect(conn *Connection) error {
	if conn == nil || strings.TrimSpace(conn.Server) == "" {
		return errors.New("connection: server address is required")
	}

	server := conn.Server
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return fmt.Errorf("connection: invalid server address %q", conn.Server)
	}

	opts := append([]Option{}, m.opts...)
	opts = append(opts, WithTimeout(conn.Timeout), WithRateLimit(conn.RateLimit, conn.RateBurst))

	if conn.CAFile != "" {
		tlsConfig, err := tlsroots.ClientConfigFromFile(conn.CAFile)
		if err != nil {
			return fmt.Errorf("connection: %w", err)
		}
		opts = append(opts, WithTLSConfig(tlsConfig))
	}

	m.client = NewHTTPClient(server, m.store, opts...)
	m.api = NewAuthAPI(m.client)
	m.current = conn
	return nil
}

// Disconnect drops the current gateway.
func (m *Manager) Disconnect() {
	m.current = nil
	m.client = nil
	m.api = nil
}

// Current returns the current connection.
func (m *Manager) Current() *Connection {
	return m.current
}

// IsConnected returns true if a gateway is available.
func (m *Manager) IsConnected() bool {
	return m.current != nil
}

// Client returns the current gateway.
func (m *Manager) Client() (*HTTPClient, error) {
	if m.client == nil {
		return nil, ErrNotConnected
	}
	return m.client, nil
}

// API returns the typed API over the current gateway.
func (m *Manager) API() (*AuthAPI, error) {
	if m.api == nil {
		return nil, ErrNotConnected
	}
	return m.api, nil
}
