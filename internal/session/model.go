package session

import "time"

// Session is the server side record behind a browser session cookie.
type Session struct {
	ID      string
	Profile *AuthenticatedProfile
	Expiry  time.Time
}

// AuthenticatedProfile is stored only after both the token exchange and the
// profile fetch succeeded.
type AuthenticatedProfile struct {
	AccessToken  string
	RefreshToken string
	Fields       map[string]string
}

// Field returns the provider field with the given name or an empty string.
func (p *AuthenticatedProfile) Field(name string) string {
	if p == nil {
		return ""
	}

	return p.Fields[name]
}

// State is the anti-forgery token of a single login attempt.
type State struct {
	ID          string
	SessionID   string
	Fingerprint string
	Expiry      time.Time
}
