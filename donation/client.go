// Package donation is the HTTP client for the donation platform's REST API:
// the auth endpoints under /donor, the campaign/category catalogue, and the
// donation operations. It is a thin wrapper over a base URL and default
// headers; session lifecycle lives in the auth package.
package donation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultTimeout = 30 * time.Second

// Client talks to the donation platform. Protected calls carry the bearer
// token of the bound Authenticator; token-exchange calls pass their
// credential explicitly and bypass the auth transport.
type Client struct {
	baseURL string
	plain   *http.Client
	authed  *http.Client
	log     zerolog.Logger

	mu   sync.RWMutex
	auth Authenticator
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithTimeout overrides the default per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.plain.Timeout = timeout
		c.authed.Timeout = timeout
	}
}

// WithTransport sets a custom base transport (proxies, test doubles).
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.plain.Transport = transport
		c.authed.Transport.(*authTransport).base = transport
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		plain:   &http.Client{Timeout: defaultTimeout},
		log:     zerolog.Nop(),
	}
	c.authed = &http.Client{
		Timeout:   defaultTimeout,
		Transport: &authTransport{auth: c.authenticator},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Bind attaches the Authenticator that supplies bearer tokens for protected
// calls. Called once during wiring, after the auth service is constructed.
func (c *Client) Bind(a Authenticator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = a
}

func (c *Client) authenticator() Authenticator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

// Login exchanges email/password for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (TokenPair, error) {
	var env tokenEnvelope
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, c.plain, http.MethodPost, "/donor/login", body, "", &env); err != nil {
		return TokenPair{}, fmt.Errorf("[Client.Login] %w", err)
	}
	return env.pair()
}

// Register creates a donor account and returns its first token pair.
func (c *Client) Register(ctx context.Context, name, email, password string) (TokenPair, error) {
	var env tokenEnvelope
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, c.plain, http.MethodPost, "/donor/register", body, "", &env); err != nil {
		return TokenPair{}, fmt.Errorf("[Client.Register] %w", err)
	}
	return env.pair()
}

// Refresh exchanges a refresh token for a new token pair. The refresh token
// is the bearer credential on this call.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	var env tokenEnvelope
	if err := c.do(ctx, c.plain, http.MethodPost, "/donor/refresh", struct{}{}, refreshToken, &env); err != nil {
		return TokenPair{}, fmt.Errorf("[Client.Refresh] %w", err)
	}
	return env.pair()
}

// Logout invalidates the session server-side. Best effort; callers clear
// local state regardless of the outcome.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if err := c.do(ctx, c.plain, http.MethodPost, "/donor/logout", struct{}{}, accessToken, nil); err != nil {
		return fmt.Errorf("[Client.Logout] %w", err)
	}
	return nil
}

// Me returns the authenticated donor's profile. Also serves as the liveness
// probe: a 401 here flows through the auth transport's reactive refresh.
func (c *Client) Me(ctx context.Context) (*Donor, error) {
	var donor Donor
	if err := c.do(ctx, c.authed, http.MethodGet, "/donor/me", nil, "", &donor); err != nil {
		return nil, fmt.Errorf("[Client.Me] %w", err)
	}
	return &donor, nil
}

// Donate submits a donation to a campaign. Amount is passed through as the
// server's string-encoded money format.
func (c *Client) Donate(ctx context.Context, campaignID int, amount string) error {
	body := map[string]any{"campaign_id": campaignID, "amount": amount}
	if err := c.do(ctx, c.authed, http.MethodPost, "/donor/donate", body, "", nil); err != nil {
		return fmt.Errorf("[Client.Donate] %w", err)
	}
	return nil
}

// Donations returns the donor's donation history.
func (c *Client) Donations(ctx context.Context) ([]DonationRecord, error) {
	var out struct {
		Donations []DonationRecord `json:"donations"`
	}
	if err := c.do(ctx, c.authed, http.MethodGet, "/donor/donations", nil, "", &out); err != nil {
		return nil, fmt.Errorf("[Client.Donations] %w", err)
	}
	return out.Donations, nil
}

// Campaigns returns all campaigns.
func (c *Client) Campaigns(ctx context.Context) ([]Campaign, error) {
	var out struct {
		Campaigns []Campaign `json:"campaigns"`
	}
	if err := c.do(ctx, c.plain, http.MethodGet, "/campaigns/all", nil, "", &out); err != nil {
		return nil, fmt.Errorf("[Client.Campaigns] %w", err)
	}
	return out.Campaigns, nil
}

// CampaignsByCategory returns the campaigns of one category.
func (c *Client) CampaignsByCategory(ctx context.Context, categoryID int) ([]Campaign, error) {
	var out struct {
		Campaigns []Campaign `json:"campaigns"`
	}
	path := "/campaigns/category/" + strconv.Itoa(categoryID)
	if err := c.do(ctx, c.plain, http.MethodGet, path, nil, "", &out); err != nil {
		return nil, fmt.Errorf("[Client.CampaignsByCategory] %w", err)
	}
	return out.Campaigns, nil
}

// Campaign returns a single campaign by id. The platform exposes no detail
// endpoint, so the catalogue is fetched and filtered client-side.
func (c *Client) Campaign(ctx context.Context, id int) (*Campaign, error) {
	campaigns, err := c.Campaigns(ctx)
	if err != nil {
		return nil, err
	}
	for i := range campaigns {
		if campaigns[i].ID == id {
			return &campaigns[i], nil
		}
	}
	return nil, fmt.Errorf("[Client.Campaign] id %d: %w", id, ErrCampaignNotFound)
}

// Categories returns all campaign categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out struct {
		Data []Category `json:"data"`
	}
	if err := c.do(ctx, c.plain, http.MethodGet, "/categories/all", nil, "", &out); err != nil {
		return nil, fmt.Errorf("[Client.Categories] %w", err)
	}
	return out.Data, nil
}

// SearchCampaigns filters the catalogue by a case-insensitive title match.
func (c *Client) SearchCampaigns(ctx context.Context, term string) ([]Campaign, error) {
	campaigns, err := c.Campaigns(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return campaigns, nil
	}
	matches := make([]Campaign, 0, len(campaigns))
	for _, campaign := range campaigns {
		if strings.Contains(strings.ToLower(campaign.Title), needle) {
			matches = append(matches, campaign)
		}
	}
	return matches, nil
}

// do performs one JSON request/response cycle. Non-2xx statuses become
// *APIError; transport failures are returned as-is for the caller to
// classify.
func (c *Client) do(ctx context.Context, httpc *http.Client, method, path string, body any, bearer string, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    serverMessage(data),
		}
		if retryAfter, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			apiErr.RetryAfter = retryAfter
		}
		c.log.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("request rejected")
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// serverMessage pulls a human-readable message out of an error body.
func serverMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
