package repl

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultHistorySize caps the number of remembered lines.
const DefaultHistorySize = 500

// History keeps entered lines, optionally backed by a file.
// Lines that carry secrets are never recorded.
type History struct {
	mu        sync.Mutex
	entries   []string
	maxSize   int
	file      string
	sensitive []string
}

// NewHistory creates a history backed by file; an empty file keeps the
// history in memory. Lines containing any of the sensitive flags are
// dropped.
func NewHistory(file string, maxSize int, sensitive ...string) *History {
	if maxSize <= 0 {
		maxSize = DefaultHistorySize
	}
	return &History{
		maxSize:   maxSize,
		file:      file,
		sensitive: sensitive,
	}
}

// Add records a line.
func (h *History) Add(line string) {
	if h.isSensitive(line) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}
	h.entries = append(h.entries, line)
	if len(h.entries) > h.maxSize {
		h.entries = h.entries[len(h.entries)-h.maxSize:]
	}
}

// Get returns the entry at index, 0 being the most recent.
func (h *History) Get(index int) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 0 || index >= len(h.entries) {
		return ""
	}
	return h.entries[len(h.entries)-1-index]
}

// Entries returns a copy of the history, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

// Load reads the history file. A missing file is not an error.
func (h *History) Load() error {
	if h.file == "" {
		return nil
	}
	f, err := os.Open(h.file)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			h.Add(line)
		}
	}
	return scanner.Err()
}

// Save writes the history file with owner-only permissions.
func (h *History) Save() error {
	if h.file == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.file), 0o700); err != nil {
		return err
	}

	var b strings.Builder
	for _, line := range h.Entries() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return os.WriteFile(h.file, []byte(b.String()), 0o600)
}

func (h *History) isSensitive(line string) bool {
	for _, flag := range h.sensitive {
		for _, field := range strings.Fields(line) {
			name, _, _ := strings.Cut(field, "=")
			if name == flag {
				return true
			}
		}
	}
	return false
}
