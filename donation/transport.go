package donation

import (
	"context"
	"net/http"
)

// Authenticator supplies bearer tokens for protected calls and receives the
// reactive signal when the server rejects one. Invalidated must route into
// the app's single refresh coordinator, never into its own refresh path.
type Authenticator interface {
	// Token returns the current access token, empty when logged out.
	Token() string

	// Invalidated reports a 401 observed on a protected call. It blocks
	// until the (guarded) refresh attempt settles.
	Invalidated(ctx context.Context)
}

// authTransport injects the bearer token into protected requests. A 401
// response is the reactive backstop for token expiry: it triggers a refresh
// through the bound Authenticator and retries the request once with the new
// token.
type authTransport struct {
	base http.RoundTripper
	auth func() Authenticator
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	a := t.auth()
	token := ""
	if a != nil {
		token = a.Token()
	}
	if token != "" {
		req2 := req.Clone(req.Context())
		req2.Header.Set("Authorization", "Bearer "+token)
		req = req2
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || a == nil || token == "" {
		return resp, nil
	}

	// Reactive refresh, then retry once with the replacement token. A failed
	// refresh tears the session down, in which case the new token is empty
	// and the original 401 stands.
	a.Invalidated(req.Context())
	newToken := a.Token()
	if newToken == "" || newToken == token {
		return resp, nil
	}

	resp.Body.Close()
	retry := req.Clone(req.Context())
	retry.Header.Set("Authorization", "Bearer "+newToken)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	return base.RoundTrip(retry)
}
