package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrTransport wraps every failure that happened before a response arrived.
	ErrTransport = errors.New("gateway: transport error")
	// ErrMalformed is returned when a response that must carry a value does not.
	ErrMalformed = errors.New("gateway: malformed response")
)

// Error is a non-2xx answer from the backend.
type Error struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }

func IsForbidden(err error) bool { return hasStatus(err, http.StatusForbidden) }

func IsTransport(err error) bool { return errors.Is(err, ErrTransport) }

// StatusCode returns the backend status carried by err, or 0.
func StatusCode(err error) int {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.StatusCode
	}
	return 0
}

func hasStatus(err error, status int) bool {
	return StatusCode(err) == status
}

func parseError(method, path string, status int, body []byte) error {
	out := &Error{StatusCode: status, Method: method, Path: path}
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		out.Message = strings.TrimSpace(string(body))
	} else {
		for _, k := range []string{"message", "error", "msg"} {
			if s, ok := obj[k].(string); ok && s != "" {
				out.Message = s
				break
			}
		}
	}
	if out.Message == "" {
		out.Message = http.StatusText(status)
	}
	return out
}
