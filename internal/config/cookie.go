package config

import "net/http"

var sameSiteModes = map[CookieSameSite]http.SameSite{
	CookieSameSiteNone:   http.SameSiteNoneMode,
	CookieSameSiteLax:    http.SameSiteLaxMode,
	CookieSameSiteStrict: http.SameSiteStrictMode,
}

// Mode returns the net/http SameSite mode, or the default mode for an
// unknown value.
func (s CookieSameSite) Mode() http.SameSite {
	return sameSiteModes[s]
}

func (s CookieSameSite) Valid() bool {
	_, ok := sameSiteModes[s]
	return ok
}

// ToCookie builds a cookie carrying value from the template.
func (ct *CookieTemplate) ToCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     ct.Name,
		Value:    value,
		MaxAge:   ct.MaxAge,
		Path:     ct.Path,
		Domain:   ct.Domain,
		Secure:   ct.Secure,
		HttpOnly: ct.HTTPOnly,
		SameSite: ct.SameSite.Mode(),
	}
}
