package twitch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// DefaultUsersURL is the Helix endpoint returning the authenticated user.
const DefaultUsersURL = "https://api.twitch.tv/helix/users"

const maxProfileBodySize = 1 << 20

var ErrEmptyProfile = errors.New("profile response contains no user")

// HelixProfileFetcher reads the user profile from the Twitch Helix API.
type HelixProfileFetcher struct {
	httpClient *http.Client
	clientID   string
	usersURL   string
}

func NewHelixProfileFetcher(httpClient *http.Client, clientID, usersURL string) *HelixProfileFetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if usersURL == "" {
		usersURL = DefaultUsersURL
	}

	return &HelixProfileFetcher{
		httpClient: httpClient,
		clientID:   clientID,
		usersURL:   usersURL,
	}
}

func (f *HelixProfileFetcher) FetchProfile(ctx context.Context, accessToken string) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.usersURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating profile request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Client-ID", f.clientID)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting profile: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading profile response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile endpoint returned status %d", resp.StatusCode)
	}

	return ParseProfile(body)
}

// ParseProfile decodes a Helix users response. Both the enveloped form
// {"data":[{...}]} and a bare user object are accepted. Scalar values are
// kept as strings; nested values are dropped. The Helix names description
// and profile_image_url are also exposed as bio and logo.
func ParseProfile(body []byte) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}

	if data, ok := raw["data"]; ok {
		var users []map[string]json.RawMessage
		if err := json.Unmarshal(data, &users); err != nil {
			return nil, fmt.Errorf("decoding profile data: %w", err)
		}
		if len(users) == 0 {
			return nil, ErrEmptyProfile
		}
		raw = users[0]
	}

	profile := make(map[string]string, len(raw)+2)
	for k, v := range raw {
		if s, ok := scalarString(v); ok {
			profile[k] = s
		}
	}

	if len(profile) == 0 {
		return nil, ErrEmptyProfile
	}

	alias(profile, "bio", "description")
	alias(profile, "logo", "profile_image_url")

	return profile, nil
}

func alias(profile map[string]string, name, from string) {
	if _, ok := profile[name]; ok {
		return
	}
	if v, ok := profile[from]; ok {
		profile[name] = v
	}
}

func scalarString(v json.RawMessage) (string, bool) {
	var val any
	if err := json.Unmarshal(v, &val); err != nil {
		return "", false
	}

	switch t := val.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
