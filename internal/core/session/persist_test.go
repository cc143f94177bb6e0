package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/hostdeck-go/internal/core/domain"
	"github.com/yndnr/hostdeck-go/internal/storage"
	"github.com/yndnr/hostdeck-go/internal/storage/memory"
	"github.com/yndnr/hostdeck-go/internal/telemetry/logger"
	"github.com/yndnr/hostdeck-go/pkg/crypto/adaptive"
)

func testKey() []byte {
	key := make([]byte, adaptive.KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestKVPersister_RoundTrip(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		key  []byte
	}{
		{"plaintext", nil},
		{"encrypted", testKey()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := memory.New()
			p, err := NewKVPersister(engine, tt.key)
			if err != nil {
				t.Fatalf("NewKVPersister() error = %v", err)
			}

			rec, err := p.Load(ctx)
			if err != nil || rec != nil {
				t.Fatalf("Load() on empty engine = %v, %v", rec, err)
			}

			want := Record{Identity: alice, Access: "A1", Renewal: "R1", IsAuthenticated: true}
			if err := p.Save(ctx, want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := p.Load(ctx)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.Access != "A1" || got.Renewal != "R1" || !got.IsAuthenticated || got.Identity.Username != "alice" {
				t.Errorf("Load() = %+v", got)
			}

			raw, _ := engine.Get(ctx, []byte(StorageKey))
			if tt.key != nil && strings.Contains(string(raw), "A1") {
				t.Error("encrypted record should not contain the plaintext credential")
			}
			if tt.key == nil && !strings.Contains(string(raw), `"isAuthenticated":true`) {
				t.Errorf("plaintext record = %s", raw)
			}
		})
	}
}

func TestKVPersister_WrongKey(t *testing.T) {
	ctx := context.Background()
	engine := memory.New()

	writer, _ := NewKVPersister(engine, testKey())
	if err := writer.Save(ctx, Record{Access: "A1"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	other := make([]byte, adaptive.KeySize)
	reader, _ := NewKVPersister(engine, other)
	_, err := reader.Load(ctx)
	if !errors.Is(err, ErrCorruptRecord) {
		t.Errorf("error = %v, want ErrCorruptRecord", err)
	}
	if !errors.Is(err, domain.ErrStorage) {
		t.Errorf("error = %v, want ErrStorage", err)
	}
}

func TestKVPersister_Garbage(t *testing.T) {
	ctx := context.Background()
	engine := memory.New()
	_ = engine.Set(ctx, []byte(StorageKey), []byte("not json"))

	p, _ := NewKVPersister(engine, nil)
	if _, err := p.Load(ctx); !errors.Is(err, ErrCorruptRecord) {
		t.Errorf("error = %v, want ErrCorruptRecord", err)
	}

	// A store over the same engine starts signed out.
	s, err := Open(ctx, p, logger.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s.Snapshot().IsAuthenticated {
		t.Error("garbage record should not authenticate")
	}
}

func TestKVPersister_ClosedEngine(t *testing.T) {
	ctx := context.Background()
	engine := memory.New()
	p, _ := NewKVPersister(engine, nil)
	_ = engine.Close()

	if err := p.Save(ctx, Record{}); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("Save() error = %v, want ErrClosed", err)
	}
	if _, err := p.Load(ctx); !errors.Is(err, domain.ErrStorage) {
		t.Errorf("Load() error = %v, want ErrStorage", err)
	}
}

func TestNewKVPersister_InvalidKey(t *testing.T) {
	if _, err := NewKVPersister(memory.New(), []byte("short")); !errors.Is(err, adaptive.ErrInvalidKey) {
		t.Errorf("error = %v, want ErrInvalidKey", err)
	}
}

// A session committed by one process is visible to the next one.
func TestStore_PersistAcrossOpen(t *testing.T) {
	ctx := context.Background()
	engine := memory.New()
	p, _ := NewKVPersister(engine, testKey())

	first, _ := Open(ctx, p, logger.Nop())
	if err := first.CommitSession(ctx, alice, pair); err != nil {
		t.Fatalf("CommitSession() error = %v", err)
	}

	second, err := Open(ctx, p, logger.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !second.Snapshot().IsAuthenticated || second.AccessCredential() != "A1" {
		t.Error("second store should rehydrate the committed session")
	}

	_ = second.Clear(ctx)
	third, _ := Open(ctx, p, logger.Nop())
	if third.Snapshot().IsAuthenticated {
		t.Error("cleared session should rehydrate signed out")
	}
}

func TestStore_PersistExpiry(t *testing.T) {
	ctx := context.Background()
	p, _ := NewKVPersister(memory.New(), testKey())
	expires := time.Unix(1767225600, 0)

	first, _ := Open(ctx, p, logger.Nop())
	withExpiry := pair
	withExpiry.ExpiresAt = expires
	if err := first.CommitSession(ctx, alice, withExpiry); err != nil {
		t.Fatalf("CommitSession() error = %v", err)
	}

	second, err := Open(ctx, p, logger.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := second.Snapshot().Credentials; got == nil || !got.ExpiresAt.Equal(expires) {
		t.Errorf("rehydrated credentials = %+v, want expiry %v", got, expires)
	}
}

func TestLoadOrCreateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "key")

	key, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("LoadOrCreateKey() error = %v", err)
	}
	if len(key) != adaptive.KeySize {
		t.Errorf("key length = %d, want %d", len(key), adaptive.KeySize)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("key file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("key file mode = %v, want 0600", info.Mode().Perm())
	}

	again, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("second LoadOrCreateKey() error = %v", err)
	}
	if string(again) != string(key) {
		t.Error("existing key should be reused")
	}
}

func TestLoadOrCreateKey_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	_ = os.WriteFile(path, []byte("zz"), 0o600)

	if _, err := LoadOrCreateKey(path); err == nil {
		t.Error("expected error for malformed key file")
	}
}
