package token

import (
	"encoding/hex"
	"testing"
)

func TestHash(t *testing.T) {
	// SHA-256("abc")
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := Hash("abc"); got != want {
		t.Errorf("Hash(abc) = %q, want %q", got, want)
	}
}

func TestHash_Deterministic(t *testing.T) {
	if Hash("A1") != Hash("A1") {
		t.Error("Hash should be deterministic")
	}
	if Hash("A1") == Hash("A2") {
		t.Error("different inputs should hash differently")
	}
}

func TestFingerprint(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantLen int
	}{
		{"empty", "", 0},
		{"short", "A1", FingerprintLength},
		{"jwt-like", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig", FingerprintLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := Fingerprint(tt.value)
			if len(fp) != tt.wantLen {
				t.Errorf("len(Fingerprint) = %d, want %d", len(fp), tt.wantLen)
			}
			if tt.value != "" && fp != Hash(tt.value)[:FingerprintLength] {
				t.Errorf("Fingerprint = %q, should be prefix of Hash", fp)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	if !Equal("R1", "R1") {
		t.Error("Equal should be true for identical values")
	}
	if Equal("R1", "R2") {
		t.Error("Equal should be false for different values")
	}
	if Equal("R1", "") {
		t.Error("Equal should be false against empty")
	}
}

func TestGenerateBytes(t *testing.T) {
	for _, n := range []int{16, 32, 64} {
		b, err := GenerateBytes(n)
		if err != nil {
			t.Fatalf("GenerateBytes(%d) error = %v", n, err)
		}
		if len(b) != n {
			t.Errorf("GenerateBytes(%d) length = %d", n, len(b))
		}
	}
}

func TestGenerateKey(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		key, err := GenerateKey()
		if err != nil {
			t.Fatalf("GenerateKey() error = %v", err)
		}
		raw, err := hex.DecodeString(key)
		if err != nil {
			t.Fatalf("GenerateKey() returned invalid hex: %v", err)
		}
		if len(raw) != KeyLength {
			t.Errorf("decoded length = %d, want %d", len(raw), KeyLength)
		}
		if seen[key] {
			t.Errorf("GenerateKey() produced duplicate key")
		}
		seen[key] = true
	}
}
