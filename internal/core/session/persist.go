package session

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yndnr/hostdeck-go/internal/core/domain"
	"github.com/yndnr/hostdeck-go/internal/storage"
	"github.com/yndnr/hostdeck-go/pkg/crypto/adaptive"
	"github.com/yndnr/hostdeck-go/pkg/token"
)

// StorageKey is the fixed key the session record is stored under.
const StorageKey = "auth-store"

// ErrCorruptRecord marks a stored record that cannot be decrypted or decoded.
var ErrCorruptRecord = errors.New("corrupt session record")

// Persister loads and saves the session record.
type Persister interface {
	// Load returns the stored record, or nil when nothing was stored.
	Load(ctx context.Context) (*Record, error)

	// Save durably replaces the stored record.
	Save(ctx context.Context, rec Record) error
}

// KVPersister stores the record as JSON in a KVEngine, optionally sealed
// with an adaptive cipher.
type KVPersister struct {
	engine storage.KVEngine
	key    []byte
	cipher *adaptive.Cipher
}

var _ Persister = (*KVPersister)(nil)

// NewKVPersister creates a persister over engine.
// A nil key stores the record in plaintext.
func NewKVPersister(engine storage.KVEngine, key []byte) (*KVPersister, error) {
	p := &KVPersister{engine: engine}
	if key != nil {
		c, err := adaptive.New(key)
		if err != nil {
			return nil, fmt.Errorf("session: init cipher: %w", err)
		}
		p.key = key
		p.cipher = c
	}
	return p, nil
}

// Load implements Persister.
func (p *KVPersister) Load(ctx context.Context) (*Record, error) {
	raw, err := p.engine.Get(ctx, []byte(StorageKey))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}

	if p.cipher != nil {
		// Open by tag: the record may have been sealed on a host that
		// preferred the other algorithm.
		raw, err = adaptive.Open(p.key, raw, []byte(StorageKey))
		if err != nil {
			return nil, domain.ErrStorage.WithDetails("decrypt session record").
				WithCause(fmt.Errorf("%w: %v", ErrCorruptRecord, err))
		}
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, domain.ErrStorage.WithDetails("decode session record").
			WithCause(fmt.Errorf("%w: %v", ErrCorruptRecord, err))
	}
	return &rec, nil
}

// Save implements Persister.
func (p *KVPersister) Save(ctx context.Context, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return domain.ErrStorage.WithCause(err)
	}

	if p.cipher != nil {
		raw, err = p.cipher.Seal(raw, []byte(StorageKey))
		if err != nil {
			return domain.ErrStorage.WithDetails("encrypt session record").WithCause(err)
		}
	}

	if err := p.engine.Set(ctx, []byte(StorageKey), raw); err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

// LoadOrCreateKey reads the hex-encoded state key at path, generating and
// writing a new one (mode 0600) when the file does not exist.
func LoadOrCreateKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		key, err := hex.DecodeString(strings.TrimSpace(string(data)))
		if err != nil || len(key) != adaptive.KeySize {
			return nil, fmt.Errorf("session: invalid key file %s", path)
		}
		return key, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("session: read key file: %w", err)
	}

	encoded, err := token.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("session: generate key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("session: create key dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(encoded+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("session: write key file: %w", err)
	}
	return hex.DecodeString(encoded)
}
