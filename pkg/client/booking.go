package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseURL string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *BookingClient) Create(ctx context.Context, who Identity, body any) (*Response, error) {
	return c.httpClient.Do(ctx, http.MethodPost, "/api/v1/bookings", body, who.headers())
}

// CreateIdempotent sends the request with an Idempotency-Key so retries replay the first response.
func (c *BookingClient) CreateIdempotent(ctx context.Context, who Identity, key string, body any) (*Response, error) {
	headers := who.headers()
	headers[HeaderIdempotencyKey] = key
	return c.httpClient.Do(ctx, http.MethodPost, "/api/v1/bookings", body, headers)
}

func (c *BookingClient) GetByID(ctx context.Context, who Identity, id string) (*Response, error) {
	return c.httpClient.Do(ctx, http.MethodGet, "/api/v1/bookings/id/"+url.PathEscape(id), nil, who.headers())
}

func (c *BookingClient) GetMine(ctx context.Context, who Identity, limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/bookings/mine?limit=%d&offset=%d", limit, offset)
	return c.httpClient.Do(ctx, http.MethodGet, path, nil, who.headers())
}

func (c *BookingClient) GetIncoming(ctx context.Context, who Identity, limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/bookings/incoming?limit=%d&offset=%d", limit, offset)
	return c.httpClient.Do(ctx, http.MethodGet, path, nil, who.headers())
}

func (c *BookingClient) UpdateStatus(ctx context.Context, who Identity, id string, status string) (*Response, error) {
	path := "/api/v1/bookings/id/" + url.PathEscape(id) + "/status"
	return c.httpClient.Do(ctx, http.MethodPut, path, map[string]string{"status": status}, who.headers())
}

func (c *BookingClient) Cancel(ctx context.Context, who Identity, id string) (*Response, error) {
	path := "/api/v1/bookings/id/" + url.PathEscape(id) + "/cancel"
	return c.httpClient.Do(ctx, http.MethodPost, path, map[string]any{}, who.headers())
}

func (c *BookingClient) Events(ctx context.Context, who Identity, id string) (*Response, error) {
	path := "/api/v1/bookings/id/" + url.PathEscape(id) + "/events"
	return c.httpClient.Do(ctx, http.MethodGet, path, nil, who.headers())
}
