// Package twitch is the OAuth2 client for the Twitch identity provider.
package twitch

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/twitch"

	"github.com/openkcm/twitch-login/internal/config"
	"github.com/openkcm/twitch-login/internal/serviceerr"
)

// ProviderName is the path segment of the login routes.
const ProviderName = "twitch"

// ProfileFetcher loads the profile of the user owning accessToken.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, accessToken string) (map[string]string, error)
}

// Client performs the authorization code exchange and the profile lookup.
type Client struct {
	config     oauth2.Config
	profiles   ProfileFetcher
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithProfileFetcher replaces the Helix profile fetcher.
func WithProfileFetcher(f ProfileFetcher) ClientOption {
	return func(c *Client) { c.profiles = f }
}

// WithHTTPClient sets the client used for the token exchange and the default
// profile fetcher.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(cfg config.Twitch, opts ...ClientOption) *Client {
	endpoint := twitch.Endpoint
	// Twitch only reads client credentials from the form body. Left on
	// auto-detect, oauth2 tries Basic auth first and retries on failure.
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	c := &Client{
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       cfg.Scopes,
			Endpoint:     endpoint,
		},
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.profiles == nil {
		c.profiles = NewHelixProfileFetcher(c.httpClient, cfg.ClientID, cfg.UsersURL)
	}

	return c
}

// AuthCodeURL returns the provider authorization URL for the given state.
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// Exchange trades the authorization code for tokens with a single request
// to the token endpoint.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, serviceerr.NewAuthError(serviceerr.KindProviderRejected, errors.New("missing authorization code"))
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			err = fmt.Errorf("token endpoint returned status %d (%s): %w", retrieveErr.Response.StatusCode, retrieveErr.ErrorCode, err)
		}

		return nil, serviceerr.NewAuthError(serviceerr.KindProviderRejected, err)
	}

	if token.AccessToken == "" {
		return nil, serviceerr.NewAuthError(serviceerr.KindProviderRejected, errors.New("token response without access token"))
	}

	return token, nil
}

// FetchProfile loads the profile for accessToken.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (map[string]string, error) {
	profile, err := c.profiles.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, serviceerr.NewAuthError(serviceerr.KindProfileFetchFailed, err)
	}

	return profile, nil
}
