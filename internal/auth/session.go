package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openkcm/storefront-sync/internal/commerce"
)

var errMalformedSession = errors.New("malformed session")

// Session is the customer session held by the auth store. Its validity is
// decided by the remote; the local copy is a cache revalidated on startup.
// Raw is the remote token object, persisted as received.
type Session struct {
	Token     string          `json:"accessToken"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Raw       json.RawMessage `json:"-"`
}

func sessionFrom(tok commerce.CustomerAccessToken) Session {
	return Session{Token: tok.AccessToken, ExpiresAt: tok.ExpiresAt, Raw: tok.Raw}
}

// encode serialises the session in the remote token format.
func (s Session) encode() (string, error) {
	if len(s.Raw) > 0 {
		return string(s.Raw), nil
	}

	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encoding session: %w", err)
	}
	return string(b), nil
}

func decodeSession(raw string) (Session, error) {
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Session{}, fmt.Errorf("%w: %w", errMalformedSession, err)
	}
	if s.Token == "" {
		return Session{}, fmt.Errorf("%w: empty access token", errMalformedSession)
	}
	s.Raw = json.RawMessage(raw)
	return s, nil
}
