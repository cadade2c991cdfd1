// Package amadeus implements flight offer search on the Amadeus Self-Service API.
package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/conference-travel-agent/internal/adapter/httpclient"
	"github.com/couchcryptid/conference-travel-agent/internal/domain"
)

// Client implements domain.FlightSearcher using the Amadeus flight offers API.
type Client struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
	baseURL      string
	logger       *slog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates an Amadeus flight search client.
func NewClient(clientID, clientSecret, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpclient.New(timeout, httpclient.DefaultRetryPolicy(), logger),
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		logger:       logger,
	}
}

// SearchOffers returns up to limit one-way offers for the route on the given
// departure date (YYYY-MM-DD). No offers on a route is an empty slice, not an
// error.
func (c *Client) SearchOffers(ctx context.Context, origin, destination, departDate string, limit int) ([]domain.FlightOffer, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("amadeus auth: %w", err)
	}

	params := url.Values{
		"originLocationCode":      {origin},
		"destinationLocationCode": {destination},
		"departureDate":           {departDate},
		"adults":                  {"1"},
		"max":                     {strconv.Itoa(limit)},
		"currencyCode":            {"USD"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v2/shopping/flight-offers?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flight offers request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("amadeus API error: status %d: %s", resp.StatusCode, body)
	}

	var searchResp offersResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	offers := make([]domain.FlightOffer, 0, len(searchResp.Data))
	for _, d := range searchResp.Data {
		if len(d.Itineraries) == 0 || len(d.Itineraries[0].Segments) == 0 {
			continue
		}
		segments := d.Itineraries[0].Segments
		first := segments[0]
		last := segments[len(segments)-1]
		offers = append(offers, domain.FlightOffer{
			Carrier:  first.CarrierCode,
			DepartAt: first.Departure.At,
			ArriveAt: last.Arrival.At,
			Stops:    len(segments) - 1,
			Price:    d.Price.Total,
			Currency: d.Price.Currency,
		})
	}

	c.logger.Debug("flight offers fetched",
		"origin", origin, "destination", destination, "count", len(offers))
	return offers, nil
}

// ensureToken returns a cached OAuth2 token, requesting a new one when the
// cache is empty or within 30 seconds of expiry so in-flight searches do not
// straddle the cutoff.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token endpoint: status %d: %s", resp.StatusCode, body)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access token")
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - 30*time.Second)
	return c.token, nil
}

// Amadeus API response types.

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type offersResponse struct {
	Data []offerData `json:"data"`
}

type offerData struct {
	Itineraries []itinerary `json:"itineraries"`
	Price       price       `json:"price"`
}

type itinerary struct {
	Segments []segment `json:"segments"`
}

type segment struct {
	CarrierCode string   `json:"carrierCode"`
	Departure   endpoint `json:"departure"`
	Arrival     endpoint `json:"arrival"`
}

type endpoint struct {
	IATACode string `json:"iataCode"`
	At       string `json:"at"`
}

type price struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}
