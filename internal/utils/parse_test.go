package utils_test

import (
	"testing"

	"github.com/konbelyavskyi/docdb/internal/utils"
)

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantCmd  string
		wantID   int64
		wantData string
	}{
		{"ping", "ping", "ping", 0, ""},
		{"get", "get 42", "get", 42, ""},
		{"exists negative id", "exists -7", "exists", -7, ""},
		{"insert simple", "insert 1 hello", "insert", 1, "hello"},
		{"insert quoted", `insert 1 "hello world"`, "insert", 1, "hello world"},
		{"remove", "remove 3", "remove", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, id, data, err := utils.SplitCommandLine(tt.line)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd != tt.wantCmd {
				t.Errorf("cmd = %q, want %q", cmd, tt.wantCmd)
			}
			if id != tt.wantID {
				t.Errorf("id = %d, want %d", id, tt.wantID)
			}
			if string(data) != tt.wantData {
				t.Errorf("data = %q, want %q", data, tt.wantData)
			}
		})
	}
}

func TestSplitCommandLineErrors(t *testing.T) {
	cases := []string{
		"",
		"insert 1",
		"get",
		"ping extra",
		`insert "unterminated`,
	}
	for _, line := range cases {
		if _, _, _, err := utils.SplitCommandLine(line); err == nil {
			t.Errorf("SplitCommandLine(%q): expected error, got nil", line)
		}
	}
}
