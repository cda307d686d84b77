package donation

import (
	"encoding/json"
	"fmt"
)

// tokenEnvelope decodes the auth endpoints' token responses. The platform
// usually nests the access token:
//
//	{"access_token":{"access_token":"...","expires_in":3600},"refresh_token":"..."}
//
// but some deployments return the flat shape:
//
//	{"access_token":"...","refresh_token":"...","expires_in":3600}
//
// Both are accepted.
type tokenEnvelope struct {
	AccessToken  json.RawMessage `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int             `json:"expires_in"`
}

func (e tokenEnvelope) pair() (TokenPair, error) {
	var nested struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(e.AccessToken, &nested); err == nil && nested.AccessToken != "" {
		return TokenPair{
			AccessToken:  nested.AccessToken,
			RefreshToken: e.RefreshToken,
			ExpiresIn:    nested.ExpiresIn,
		}, nil
	}

	var flat string
	if err := json.Unmarshal(e.AccessToken, &flat); err == nil && flat != "" {
		return TokenPair{
			AccessToken:  flat,
			RefreshToken: e.RefreshToken,
			ExpiresIn:    e.ExpiresIn,
		}, nil
	}

	return TokenPair{}, fmt.Errorf("unrecognised token response shape")
}
