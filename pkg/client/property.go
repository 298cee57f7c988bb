package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type PropertyClient struct {
	httpClient *HttpClient
}

func NewPropertyClient(baseURL string) *PropertyClient {
	return &PropertyClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *PropertyClient) Create(ctx context.Context, who Identity, body any) (*Response, error) {
	return c.httpClient.Do(ctx, http.MethodPost, "/api/v1/properties", body, who.headers())
}

func (c *PropertyClient) GetAll(ctx context.Context, who Identity, limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/properties?limit=%d&offset=%d", limit, offset)
	return c.httpClient.Do(ctx, http.MethodGet, path, nil, who.headers())
}

func (c *PropertyClient) GetMine(ctx context.Context, who Identity, limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/properties/mine?limit=%d&offset=%d", limit, offset)
	return c.httpClient.Do(ctx, http.MethodGet, path, nil, who.headers())
}

func (c *PropertyClient) GetByID(ctx context.Context, who Identity, id string) (*Response, error) {
	return c.httpClient.Do(ctx, http.MethodGet, "/api/v1/properties/id/"+url.PathEscape(id), nil, who.headers())
}

func (c *PropertyClient) Update(ctx context.Context, who Identity, id string, body any) (*Response, error) {
	return c.httpClient.Do(ctx, http.MethodPatch, "/api/v1/properties/id/"+url.PathEscape(id), body, who.headers())
}

func (c *PropertyClient) Delete(ctx context.Context, who Identity, id string) (*Response, error) {
	return c.httpClient.Do(ctx, http.MethodDelete, "/api/v1/properties/id/"+url.PathEscape(id), nil, who.headers())
}

func (c *PropertyClient) ResetAvailability(ctx context.Context, who Identity, id string) (*Response, error) {
	path := "/api/v1/properties/id/" + url.PathEscape(id) + "/reset-availability"
	return c.httpClient.Do(ctx, http.MethodPost, path, map[string]any{}, who.headers())
}
