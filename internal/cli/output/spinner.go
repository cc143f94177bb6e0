package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows an animation on a terminal while a request is in flight.
// On a non-terminal writer it prints nothing until Success or Fail.
type Spinner struct {
	w        io.Writer
	message  string
	interval time.Duration
	animate  bool

	once sync.Once
	done chan struct{}
	wg   sync.WaitGroup
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		message:  message,
		interval: 100 * time.Millisecond,
		animate:  IsTerminal(w),
		done:     make(chan struct{}),
	}
}

// Start starts the animation.
func (s *Spinner) Start() {
	if !s.animate {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			fmt.Fprintf(s.w, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], s.message)
			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop stops the animation and clears the line. Stop is idempotent.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		if s.animate {
			fmt.Fprint(s.w, "\r\033[K")
		}
	})
}

// Success stops the spinner with a success line.
func (s *Spinner) Success(message string) {
	s.Stop()
	fmt.Fprintf(s.w, "✓ %s\n", message)
}

// Fail stops the spinner with a failure line.
func (s *Spinner) Fail(message string) {
	s.Stop()
	fmt.Fprintf(s.w, "✗ %s\n", message)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
