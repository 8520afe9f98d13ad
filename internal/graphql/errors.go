package graphql

import (
	"fmt"
	"strings"
)

// Error is one entry of a GraphQL "errors" array.
type Error struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// ErrorList is a populated GraphQL "errors" array.
type ErrorList []Error

func (l ErrorList) Error() string {
	msgs := make([]string, 0, len(l))
	for _, e := range l {
		msgs = append(msgs, e.Message)
	}

	return "graphql: " + strings.Join(msgs, "; ")
}

// StatusError is returned when the endpoint answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("graphql endpoint returned status %d", e.StatusCode)
	}

	return fmt.Sprintf("graphql endpoint returned status %d: %s", e.StatusCode, e.Body)
}
