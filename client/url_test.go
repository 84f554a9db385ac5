package client

import (
	"errors"
	"net/url"
	"testing"
	"time"
)

type tag string

func (t tag) String() string { return "tag:" + string(t) }

func TestBuildURL(t *testing.T) {
	c := &Client{config: Config{BaseURL: "https://api.test/v1/"}}

	tests := []struct {
		name   string
		path   string
		params map[string]any
		want   string
	}{
		{"joins slashes", "/users", nil, "https://api.test/v1/users"},
		{"no leading slash", "users", nil, "https://api.test/v1/users"},
		{"absolute path kept", "http://other.test/x", nil, "http://other.test/x"},
		{"scalars", "/s", map[string]any{"page": 2, "q": "go lang", "on": true, "f": 1.5}, "https://api.test/v1/s?f=1.5&on=true&page=2&q=go+lang"},
		{"slice repeats", "/s", map[string]any{"id": []int{1, 2}}, "https://api.test/v1/s?id=1&id=2"},
		{"nil skipped", "/s", map[string]any{"a": nil, "b": "x"}, "https://api.test/v1/s?b=x"},
		{"stringer", "/s", map[string]any{"t": tag("x")}, "https://api.test/v1/s?t=tag%3Ax"},
		{"map as json", "/s", map[string]any{"filter": map[string]int{"age": 3}}, "https://api.test/v1/s?filter=%7B%22age%22%3A3%7D"},
		{"existing query merged", "/s?x=1", map[string]any{"y": 2}, "https://api.test/v1/s?x=1&y=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.buildURL(tt.path, tt.params)
			if err != nil {
				t.Fatalf("buildURL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("buildURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildURL_InvalidParam(t *testing.T) {
	c := &Client{config: Config{BaseURL: "https://api.test"}}
	_, err := c.buildURL("/s", map[string]any{"bad": []any{map[string]any{"c": make(chan int)}}})
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("buildURL() error = %v, want ErrInvalidParams", err)
	}
}

func TestBuildURL_ParamsRoundTrip(t *testing.T) {
	c := &Client{config: Config{BaseURL: "https://api.test"}}
	got, err := c.buildURL("/s", map[string]any{"tags": []string{"a", "b&c"}})
	if err != nil {
		t.Fatalf("buildURL() error = %v", err)
	}
	u, _ := url.Parse(got)
	vals := u.Query()["tags"]
	if len(vals) != 2 || vals[0] != "a" || vals[1] != "b&c" {
		t.Errorf("tags = %v, want [a b&c]", vals)
	}
}

func TestResolve(t *testing.T) {
	c := &Client{config: Config{
		DefaultHeaders: map[string]string{"X-A": "1"},
		DefaultTimeout: 10 * time.Second,
		EnableCache:    true,
		CacheDuration:  5 * time.Minute,
		EnableRetry:    true,
		RetryCount:     3,
		RetryDelay:     time.Second,
	}}

	s := c.resolve(nil)
	if !s.cache || !s.retry || !s.auth || s.retryCount != 3 || s.timeout != 10*time.Second {
		t.Errorf("resolve(nil) = %+v, want config values", s)
	}

	s = c.resolve([]RequestOption{
		WithCache(false),
		WithRetry(false),
		WithRetryCount(0),
		WithRetryDelay(5 * time.Millisecond),
		WithTimeout(time.Second),
		WithCacheDuration(time.Minute),
		WithHeader("X-A", "2"),
		WithoutAuth(),
		nil,
	})
	if s.cache || s.retry || s.auth {
		t.Errorf("resolve() flags = cache %v retry %v auth %v, want all false", s.cache, s.retry, s.auth)
	}
	if s.retryCount != 0 || s.retryDelay != 5*time.Millisecond || s.timeout != time.Second || s.cacheTTL != time.Minute {
		t.Errorf("resolve() = %+v, want per-call values", s)
	}
	if s.headers["X-A"] != "2" {
		t.Errorf("header X-A = %q, want 2", s.headers["X-A"])
	}
	if c.config.DefaultHeaders["X-A"] != "1" {
		t.Error("resolve() mutated DefaultHeaders")
	}
}
