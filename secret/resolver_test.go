package secret

import (
	"context"
	"errors"
	"testing"
)

type stubProvider struct {
	name    string
	values  map[string]string
	resolve func(ref string) (string, error)
	calls   int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Resolve(_ context.Context, ref string) (string, error) {
	s.calls++
	if s.resolve != nil {
		return s.resolve(ref)
	}
	return s.values[ref], nil
}

func (s *stubProvider) Close() error { return nil }

func TestParseSecretRef(t *testing.T) {
	tests := []struct {
		in       string
		provider string
		ref      string
		wantOK   bool
	}{
		{"secretref:stub:alpha", "stub", "alpha", true},
		{"secretref:file:tokens/api", "file", "tokens/api", true},
		{"Bearer secretref:stub:alpha", "", "", false},
		{"secretref:stub:", "", "", false},
		{"not-a-secretref", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			provider, ref, ok := ParseSecretRef(tt.in)
			if ok != tt.wantOK || provider != tt.provider || ref != tt.ref {
				t.Errorf("ParseSecretRef() = (%q, %q, %v), want (%q, %q, %v)",
					provider, ref, ok, tt.provider, tt.ref, tt.wantOK)
			}
		})
	}
}

func TestResolver_ResolveValue(t *testing.T) {
	t.Setenv("KEY_NAME", "alpha")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"whole value", "secretref:stub:alpha", "one"},
		{"inline", "Bearer secretref:stub:beta", "Bearer two"},
		{"several", "secretref:stub:alpha/secretref:stub:beta", "one/two"},
		{"env before refs", "secretref:stub:${KEY_NAME}", "one"},
		{"no refs", "plain", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(true, &stubProvider{name: "stub", values: map[string]string{"alpha": "one", "beta": "two"}})
			got, err := r.ResolveValue(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("ResolveValue() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolver_RepeatedRefFetchedOnce(t *testing.T) {
	stub := &stubProvider{name: "stub", values: map[string]string{"alpha": "one"}}
	r := NewResolver(true, stub)

	got, err := r.ResolveValue(context.Background(), "secretref:stub:alpha secretref:stub:alpha")
	if err != nil {
		t.Fatalf("ResolveValue() error = %v", err)
	}
	if got != "one one" {
		t.Errorf("ResolveValue() = %q, want %q", got, "one one")
	}
	if stub.calls != 1 {
		t.Errorf("provider calls = %d, want 1", stub.calls)
	}
}

func TestResolver_Errors(t *testing.T) {
	errExplode := errors.New("explode")
	stub := &stubProvider{name: "stub", resolve: func(ref string) (string, error) {
		switch ref {
		case "boom":
			return "", errExplode
		case "empty":
			return "", nil
		}
		return "ok", nil
	}}

	tests := []struct {
		name    string
		strict  bool
		in      string
		want    string
		wantErr error
	}{
		{"provider error", true, "secretref:stub:boom", "", errExplode},
		{"strict empty", true, "secretref:stub:empty", "", ErrEmptySecret},
		{"lenient empty", false, "x=secretref:stub:empty", "x=", nil},
		{"unknown provider", true, "secretref:vault:x", "", ErrProviderNotRegistered},
		{"missing env", true, "${RESTPIPE_TEST_UNSET}", "", ErrMissingEnv},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.strict, stub)
			got, err := r.ResolveValue(context.Background(), tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ResolveValue() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolver_ResolveMap(t *testing.T) {
	r := NewResolver(true, &stubProvider{name: "stub", values: map[string]string{"alpha": "one"}})

	m, err := r.ResolveMap(context.Background(), map[string]string{
		"Authorization": "Bearer secretref:stub:alpha",
		"X-Client":      "cli",
	})
	if err != nil {
		t.Fatalf("ResolveMap() error = %v", err)
	}
	if m["Authorization"] != "Bearer one" || m["X-Client"] != "cli" {
		t.Errorf("ResolveMap() = %v", m)
	}

	if _, err := r.ResolveMap(context.Background(), map[string]string{"k": "secretref:vault:x"}); !errors.Is(err, ErrProviderNotRegistered) {
		t.Errorf("ResolveMap() error = %v, want ErrProviderNotRegistered", err)
	}
}

func TestResolver_NilExpandsEnvOnly(t *testing.T) {
	t.Setenv("RESTPIPE_TEST_HOST", "api.example.com")

	var r *Resolver
	got, err := r.ResolveValue(context.Background(), "https://${RESTPIPE_TEST_HOST}/secretref:stub:x")
	if err != nil {
		t.Fatalf("ResolveValue() error = %v", err)
	}
	if got != "https://api.example.com/secretref:stub:x" {
		t.Errorf("ResolveValue() = %q", got)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
