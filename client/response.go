package client

import (
	"encoding/json"
	"net/http"
)

// Response is the outcome of a successful call.
//
// A response served from the cache has Cached set, StatusCode 200 and no
// headers; only bodies are cached.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Cached     bool
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// DecodeJSON decodes the body of a call's result. It is shaped to wrap a
// verb call directly:
//
//	user, err := client.DecodeJSON[User](c.Get(ctx, "/me"))
func DecodeJSON[T any](resp *Response, err error) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if err := resp.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
