package llm

import (
	"reflect"
	"testing"

	"depscope/internal/config"
	derrors "depscope/internal/errors"
	"depscope/internal/logging"
)

func knownSet(paths ...string) map[string]bool {
	known := make(map[string]bool, len(paths))
	for _, p := range paths {
		known[p] = true
	}
	return known
}

func TestParseFileList(t *testing.T) {
	known := knownSet("src/a.js", "src/b.js", "src/c.js")

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "clean array",
			raw:  `["src/a.js", "src/b.js"]`,
			want: []string{"src/a.js", "src/b.js"},
		},
		{
			name: "fenced reply with prose",
			raw:  "Here are the files:\n```json\n[\"src/b.js\", \"src/a.js\"]\n```\nHope that helps.",
			want: []string{"src/b.js", "src/a.js"},
		},
		{
			name: "hallucinated paths dropped",
			raw:  `["src/a.js", "src/invented.js", "src/c.js"]`,
			want: []string{"src/a.js", "src/c.js"},
		},
		{
			name: "duplicates collapse in reply order",
			raw:  `["src/b.js", "src/a.js", "src/b.js"]`,
			want: []string{"src/b.js", "src/a.js"},
		},
		{
			name: "whitespace trimmed",
			raw:  `[" src/a.js "]`,
			want: []string{"src/a.js"},
		},
		{
			name: "not an array",
			raw:  `{"files": "src/a.js"}`,
			want: nil,
		},
		{
			name: "no brackets at all",
			raw:  "I could not decide.",
			want: nil,
		},
		{
			name: "malformed json",
			raw:  `["src/a.js",`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseFileList(tt.raw, known); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseFileList(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNewWithoutKey(t *testing.T) {
	logger := logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})

	_, err := New("", config.DefaultConfig().LLM, logger)
	if !derrors.IsCode(err, derrors.LLMUnavailable) {
		t.Errorf("New with empty key = %v, want LLMUnavailable", err)
	}
}
