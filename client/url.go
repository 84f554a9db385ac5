package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// buildURL joins path onto the base URL and appends params. A path that is
// already an absolute URL is used as is.
func (c *Client) buildURL(path string, params map[string]any) (string, error) {
	raw := path
	if !isAbsoluteURL(path) {
		raw = strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("client: parse url: %w", err)
	}

	if len(params) > 0 {
		values := u.Query()
		if err := encodeParams(values, params); err != nil {
			return "", err
		}
		u.RawQuery = values.Encode()
	}
	return u.String(), nil
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// encodeParams adds params to values. Nil values are skipped, slices and
// arrays become repeated keys and maps are JSON encoded.
func encodeParams(values url.Values, params map[string]any) error {
	for key, v := range params {
		if v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			if b, ok := v.([]byte); ok {
				values.Add(key, string(b))
				continue
			}
			for i := 0; i < rv.Len(); i++ {
				s, err := formatParam(rv.Index(i).Interface())
				if err != nil {
					return fmt.Errorf("%w: %s: %w", ErrInvalidParams, key, err)
				}
				values.Add(key, s)
			}
		default:
			s, err := formatParam(v)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalidParams, key, err)
			}
			values.Add(key, s)
		}
	}
	return nil
}

func formatParam(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case fmt.Stringer:
		return t.String(), nil
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Struct:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return fmt.Sprint(v), nil
	}
}
