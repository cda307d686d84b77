package donation_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixvert/donorcli/donation"
)

type fakeAuthenticator struct {
	token       atomic.Value // string
	invalidated atomic.Int32
	onInvalid   func()
}

func newFakeAuthenticator(token string) *fakeAuthenticator {
	a := &fakeAuthenticator{}
	a.token.Store(token)
	return a
}

func (a *fakeAuthenticator) Token() string {
	return a.token.Load().(string)
}

func (a *fakeAuthenticator) Invalidated(ctx context.Context) {
	a.invalidated.Add(1)
	if a.onInvalid != nil {
		a.onInvalid()
	}
}

func TestLoginDecodesNestedTokenShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/donor/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))

		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		require.NoError(t, json.Unmarshal(body, &req))
		require.Equal(t, "donor@example.com", req["email"])
		require.Equal(t, "pw", req["password"])

		io.WriteString(w, `{"access_token":{"access_token":"AT1","expires_in":3600},"refresh_token":"RT1"}`)
	}))
	defer server.Close()

	client := donation.NewClient(server.URL)
	pair, err := client.Login(context.Background(), "donor@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "AT1", pair.AccessToken)
	require.Equal(t, "RT1", pair.RefreshToken)
	require.Equal(t, 3600, pair.ExpiresIn)
}

func TestRegisterDecodesFlatTokenShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/donor/register", r.URL.Path)
		io.WriteString(w, `{"access_token":"AT1","refresh_token":"RT1","expires_in":1800}`)
	}))
	defer server.Close()

	client := donation.NewClient(server.URL)
	pair, err := client.Register(context.Background(), "Jane", "donor@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "AT1", pair.AccessToken)
	require.Equal(t, "RT1", pair.RefreshToken)
	require.Equal(t, 1800, pair.ExpiresIn)
}

func TestLoginRejectionCarriesStatusAndRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"message":"too many attempts"}`)
	}))
	defer server.Close()

	client := donation.NewClient(server.URL)
	_, err := client.Login(context.Background(), "donor@example.com", "pw")
	require.Error(t, err)

	var apiErr *donation.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.Equal(t, 60, apiErr.RetryAfter)
	require.Equal(t, "too many attempts", apiErr.Message)
	require.True(t, donation.IsStatus(err, http.StatusTooManyRequests))
}

func TestRefreshUsesRefreshTokenAsBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/donor/refresh", r.URL.Path)
		require.Equal(t, "Bearer RT1", r.Header.Get("Authorization"))
		io.WriteString(w, `{"access_token":{"access_token":"AT2","expires_in":3600},"refresh_token":"RT2"}`)
	}))
	defer server.Close()

	client := donation.NewClient(server.URL)
	pair, err := client.Refresh(context.Background(), "RT1")
	require.NoError(t, err)
	require.Equal(t, "AT2", pair.AccessToken)
	require.Equal(t, "RT2", pair.RefreshToken)
}

func TestLogoutSendsAccessToken(t *testing.T) {
	var gotAuth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/donor/logout", r.URL.Path)
		gotAuth.Store(r.Header.Get("Authorization"))
	}))
	defer server.Close()

	client := donation.NewClient(server.URL)
	require.NoError(t, client.Logout(context.Background(), "AT1"))
	require.Equal(t, "Bearer AT1", gotAuth.Load())
}

func TestCampaignsDecodesWrappedList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/campaigns/all", r.URL.Path)
		io.WriteString(w, `{"campaigns":[
			{"id":1,"title":"Clean Water","goal_amount":"5000.00","ngo":"WaterAid",
			 "progress":{"raised":"1250.00","percentage":25,"remaining":3750}},
			{"id":2,"title":"School Meals","goal_amount":"2000.00","ngo":"FeedKids",
			 "progress":{"raised":"2000.00","percentage":100,"remaining":0}}
		]}`)
	}))
	defer server.Close()

	client := donation.NewClient(server.URL)
	campaigns, err := client.Campaigns(context.Background())
	require.NoError(t, err)
	require.Len(t, campaigns, 2)
	require.Equal(t, "Clean Water", campaigns[0].Title)
	require.Equal(t, "1250.00", campaigns[0].Progress.Raised)
	require.Equal(t, float64(25), campaigns[0].Progress.Percentage)
}

func TestCategoriesDecodesDataWrapper(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/categories/all", r.URL.Path)
		io.WriteString(w, `{"data":[{"id":1,"name":"Health"},{"id":2,"name":"Education"}]}`)
	}))
	defer server.Close()

	client := donation.NewClient(server.URL)
	categories, err := client.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	require.Equal(t, "Education", categories[1].Name)
}

func TestCampaignsByCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/campaigns/category/7", r.URL.Path)
		io.WriteString(w, `{"campaigns":[{"id":3,"title":"Vaccines","category":"Health"}]}`)
	}))
	defer server.Close()

	client := donation.NewClient(server.URL)
	campaigns, err := client.CampaignsByCategory(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	require.Equal(t, "Vaccines", campaigns[0].Title)
}

func TestCampaignByIDAndNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"campaigns":[{"id":1,"title":"Clean Water"},{"id":2,"title":"School Meals"}]}`)
	}))
	defer server.Close()

	client := donation.NewClient(server.URL)

	campaign, err := client.Campaign(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, "School Meals", campaign.Title)

	_, err = client.Campaign(context.Background(), 99)
	require.ErrorIs(t, err, donation.ErrCampaignNotFound)
}

func TestSearchCampaignsFiltersByTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"campaigns":[{"id":1,"title":"Clean Water"},{"id":2,"title":"School Meals"},{"id":3,"title":"Water Wells"}]}`)
	}))
	defer server.Close()

	client := donation.NewClient(server.URL)
	matches, err := client.SearchCampaigns(context.Background(), "water")
	require.NoError(t, err)
	require.Len(t, matches, 2)
}

func TestDonateSendsBearerAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/donor/donate", r.URL.Path)
		require.Equal(t, "Bearer AT1", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		require.Equal(t, float64(5), req["campaign_id"])
		require.Equal(t, "25.00", req["amount"])
	}))
	defer server.Close()

	client := donation.NewClient(server.URL)
	client.Bind(newFakeAuthenticator("AT1"))

	require.NoError(t, client.Donate(context.Background(), 5, "25.00"))
}

func TestDonationsHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/donor/donations", r.URL.Path)
		require.Equal(t, "Bearer AT1", r.Header.Get("Authorization"))
		io.WriteString(w, `{"donations":[{"id":1,"campaign_name":"Clean Water","amount":"25.00","status":"completed","donated_at":"2026-08-01"}]}`)
	}))
	defer server.Close()

	client := donation.NewClient(server.URL)
	client.Bind(newFakeAuthenticator("AT1"))

	records, err := client.Donations(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Clean Water", records[0].CampaignName)
}

func TestMeReturnsProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/donor/me", r.URL.Path)
		io.WriteString(w, `{"name":"Jane Donor","email":"donor@example.com"}`)
	}))
	defer server.Close()

	client := donation.NewClient(server.URL)
	client.Bind(newFakeAuthenticator("AT1"))

	donor, err := client.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Jane Donor", donor.Name)
	require.Equal(t, "donor@example.com", donor.Email)
}

// A 401 on a protected call triggers exactly one reactive refresh and the
// request is retried once with the replacement token.
func TestProtectedCallRetriesOnceAfterReactiveRefresh(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("Authorization") != "Bearer AT2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, `{"name":"Jane Donor","email":"donor@example.com"}`)
	}))
	defer server.Close()

	a := newFakeAuthenticator("AT1")
	a.onInvalid = func() { a.token.Store("AT2") } // refresh succeeded

	client := donation.NewClient(server.URL)
	client.Bind(a)

	donor, err := client.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Jane Donor", donor.Name)
	require.Equal(t, int32(1), a.invalidated.Load())
	require.Equal(t, int32(2), requests.Load())
}

// When the refresh fails (token unchanged/cleared), the original 401 stands
// and no retry happens.
func TestProtectedCallKeeps401WhenRefreshFails(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	a := newFakeAuthenticator("AT1")
	a.onInvalid = func() { a.token.Store("") } // refresh tore the session down

	client := donation.NewClient(server.URL)
	client.Bind(a)

	_, err := client.Me(context.Background())
	require.True(t, donation.IsStatus(err, http.StatusUnauthorized))
	require.Equal(t, int32(1), requests.Load())
	require.Equal(t, int32(1), a.invalidated.Load())
}

func TestUnboundClientSendsNoAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := donation.NewClient(server.URL)
	_, err := client.Me(context.Background())
	require.True(t, donation.IsStatus(err, http.StatusUnauthorized))
}
