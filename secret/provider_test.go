package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeSecret(t *testing.T, dir, name, value string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(value), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}
	return path
}

func TestEnvProvider(t *testing.T) {
	t.Setenv("RESTPIPE_TEST_TOKEN", "abc")
	p := NewEnvProvider()

	got, err := p.Resolve(context.Background(), "RESTPIPE_TEST_TOKEN")
	if err != nil || got != "abc" {
		t.Fatalf("Resolve() = (%q, %v), want (abc, nil)", got, err)
	}

	if _, err := p.Resolve(context.Background(), "RESTPIPE_TEST_UNSET_VAR"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	abs := writeSecret(t, dir, "db", "hunter2\r\n")
	p := NewFileProvider(dir)

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr error
	}{
		{"relative", "db", "hunter2", nil},
		{"absolute", abs, "hunter2", nil},
		{"missing", "nope", "", ErrNotFound},
		{"escape", "../db", "", ErrInvalidRef},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Resolve(context.Background(), tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, want %v", tt.ref, err, tt.wantErr)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("Resolve(%q) = (%q, %v), want %q", tt.ref, got, err, tt.want)
			}
		})
	}
}
