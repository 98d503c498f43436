package authlist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apierrors "go.pilab.hu/grants/errors"
)

// Gateway performs the list and revoke requests of a List.
type Gateway interface {
	List(ctx context.Context) ([]Record, error)
	Revoke(ctx context.Context, clientID string) error
}

// StatusError is returned by HTTPGateway for non-2xx responses.
type StatusError struct {
	StatusCode int
	// API is the decoded error body, nil when the body was not one.
	API *apierrors.APIError
}

func (e *StatusError) Error() string {
	if e.API != nil {
		return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.API.Error())
	}
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	if e.API == nil {
		return nil
	}
	return e.API
}

// HTTPGateway talks to the account API over HTTP.
type HTTPGateway struct {
	Client *http.Client
	Routes Routes
	// Token, when set, is sent as a bearer token.
	Token string
}

// NewHTTPGateway creates a gateway using http.DefaultClient.
func NewHTTPGateway(routes Routes, token string) *HTTPGateway {
	return &HTTPGateway{
		Client: http.DefaultClient,
		Routes: routes,
		Token:  token,
	}
}

// List fetches the authorization records.
func (g *HTTPGateway) List(ctx context.Context) ([]Record, error) {
	req, err := g.newRequest(ctx, http.MethodGet, g.Routes.ListURL())
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("list request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode authorizations: %w", err)
	}
	return records, nil
}

// Revoke deletes the authorization of clientID. The response body is ignored.
func (g *HTTPGateway) Revoke(ctx context.Context, clientID string) error {
	req, err := g.newRequest(ctx, http.MethodDelete, g.Routes.RevokeURL(clientID))
	if err != nil {
		return err
	}

	resp, err := g.client().Do(req)
	if err != nil {
		return fmt.Errorf("revoke request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (g *HTTPGateway) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}
	return req, nil
}

func (g *HTTPGateway) client() *http.Client {
	if g.Client == nil {
		return http.DefaultClient
	}
	return g.Client
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	statusErr := &StatusError{StatusCode: resp.StatusCode}
	var body apierrors.APIError
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil && body.Code != "" {
		statusErr.API = &body
	}
	return statusErr
}
