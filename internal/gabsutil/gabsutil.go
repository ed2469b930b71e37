// Package gabsutil reads optional values out of loosely typed JSON
// documents. Every lookup is safe against missing intermediate keys and
// reports "unset" instead of failing.
package gabsutil

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Jeffail/gabs/v2"
)

type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

func lookup(c *gabs.Container, path string) interface{} {
	if c == nil {
		return nil
	}

	if path == "" {
		return c.Data()
	}

	return c.Path(path).Data()
}

func Exists(c *gabs.Container, path string) bool {
	return lookup(c, path) != nil
}

// String returns the value at path as a string. Numbers are rendered
// without a fractional part when they are whole, so numeric identifiers
// come back the way the remote system meant them.
func String(c *gabs.Container, path string) (string, bool) {
	switch v := lookup(c, path).(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func StringOr(c *gabs.Container, path, def string) string {
	if s, ok := String(c, path); ok {
		return s
	}

	return def
}

func Int(c *gabs.Container, path string) (int, bool) {
	switch v := lookup(c, path).(type) {
	case float64:
		return int(v), true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), true
		}
		if f, err := v.Float64(); err == nil {
			return int(f), true
		}
		return 0, false
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func IntPtr(c *gabs.Container, path string) *int {
	if i, ok := Int(c, path); ok {
		return &i
	}

	return nil
}

func Bool(c *gabs.Container, path string) (bool, bool) {
	v, ok := lookup(c, path).(bool)
	return v, ok
}

func BoolPtr(c *gabs.Container, path string) *bool {
	if b, ok := Bool(c, path); ok {
		return &b
	}

	return nil
}

// Truthy mirrors how the remote flags are meant to be read: absent, null
// and false are all false.
func Truthy(c *gabs.Container, path string) bool {
	switch v := lookup(c, path).(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return false
	}
}

func Children(c *gabs.Container, path string) []*gabs.Container {
	if c == nil {
		return nil
	}

	if path == "" {
		return c.Children()
	}

	return c.Path(path).Children()
}

// StringMap returns the string-valued members of the object at path.
// Non-string members are skipped.
func StringMap(c *gabs.Container, path string) map[string]string {
	obj, ok := lookup(c, path).(map[string]interface{})
	if !ok {
		return nil
	}

	m := make(map[string]string, len(obj))
	for k, v := range obj {
		if s, ok := v.(string); ok {
			m[k] = s
		}
	}

	return m
}

func RequireString(c *gabs.Container, path string) (string, error) {
	s, ok := String(c, path)
	if !ok {
		return "", &MissingFieldError{Field: path}
	}

	return s, nil
}
