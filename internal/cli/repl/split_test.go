package repl

import (
	"errors"
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		line string
		want []string
		err  error
	}{
		{"whoami", []string{"whoami"}, nil},
		{"  server   list\t--page 2 ", []string{"server", "list", "--page", "2"}, nil},
		{`login "alice smith"`, []string{"login", "alice smith"}, nil},
		{`passwd --new 'a"b c'`, []string{"passwd", "--new", `a"b c`}, nil},
		{`say it\'s`, []string{"say", "it's"}, nil},
		{`a '\n'`, []string{"a", `\n`}, nil},
		{`empty ""`, []string{"empty", ""}, nil},
		{`open "quote`, nil, ErrUnterminatedQuote},
		{`trailing \`, nil, ErrUnterminatedQuote},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Split(tt.line)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Split() error = %v, want %v", err, tt.err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split() = %q, want %q", got, tt.want)
			}
		})
	}
}
