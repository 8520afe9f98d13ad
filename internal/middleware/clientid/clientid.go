// Package clientid provides utilities to identify the client instance a
// request belongs to and to retrieve its id from the context.
package clientid

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/openkcm/storefront-sync/internal/config"
)

// Using an unexported type prevents key collisions from other packages.
type contextKey string

// ClientIDKey is the context key used to store the client instance id.
const ClientIDKey contextKey = "client-id"

// ClientIDMiddleware returns an http.Handler middleware that reads the client
// instance id from the cookie described by template. Requests without a
// valid id are assigned a new one, which is set on the response.
func ClientIDMiddleware(template config.CookieTemplate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := fromRequest(r, template.Name)
			if !ok {
				id = uuid.NewString()
				http.SetCookie(w, template.ToCookie(id))
			}

			ctx := context.WithValue(r.Context(), ClientIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIDFromContext is a helper function that retrieves the client
// instance id from the context.
func ClientIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(ClientIDKey).(string)
	if !ok {
		return "", errors.New("client id not found in context")
	}
	return id, nil
}

func fromRequest(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", false
	}

	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return "", false
	}

	return id.String(), true
}
