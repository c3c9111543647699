package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"turfbook/pkg/model"
)

// APIClient is a typed client for the turfbook HTTP API. It keeps the token
// pair of the last login or refresh and sends the access token as a bearer
// header.
type APIClient struct {
	BaseURL      string
	HTTPClient   *http.Client
	AccessToken  string
	RefreshToken string
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

// DecodeData decodes the "data" member of a success envelope.
func (r *Response) DecodeData(target any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := r.DecodeJSON(&envelope); err != nil {
		return err
	}
	return json.Unmarshal(envelope.Data, target)
}

func (c *APIClient) Register(ctx context.Context, kind model.Kind, req *model.RegisterRequest) (*Response, error) {
	return c.request(ctx, http.MethodPost, accountPath(kind, "register"), req, nil)
}

// Login stores the returned token pair on success.
func (c *APIClient) Login(ctx context.Context, kind model.Kind, email, password string) (*Response, error) {
	resp, err := c.request(ctx, http.MethodPost, accountPath(kind, "login"), &model.LoginRequest{Email: email, Password: password}, nil)
	if err != nil {
		return nil, err
	}
	return resp, c.keepTokens(resp)
}

// Refresh rotates the stored refresh token.
func (c *APIClient) Refresh(ctx context.Context, kind model.Kind) (*Response, error) {
	resp, err := c.request(ctx, http.MethodPost, accountPath(kind, "refresh-token"), &model.RefreshRequest{RefreshToken: c.RefreshToken}, nil)
	if err != nil {
		return nil, err
	}
	return resp, c.keepTokens(resp)
}

func (c *APIClient) Logout(ctx context.Context, kind model.Kind) (*Response, error) {
	return c.request(ctx, http.MethodPost, accountPath(kind, "logout"), nil, nil)
}

func (c *APIClient) Current(ctx context.Context, kind model.Kind) (*Response, error) {
	return c.request(ctx, http.MethodGet, accountPath(kind, "get-current-"+string(kind)), nil, nil)
}

func (c *APIClient) Edit(ctx context.Context, kind model.Kind, patch *model.PrincipalPatch) (*Response, error) {
	return c.request(ctx, http.MethodPatch, accountPath(kind, "edit"), patch, nil)
}

func (c *APIClient) RegisterTurf(ctx context.Context, req *model.RegisterTurfRequest) (*Response, error) {
	return c.request(ctx, http.MethodPost, "/api/v1/owners/register-turf", req, nil)
}

func (c *APIClient) ListTurfs(ctx context.Context) (*Response, error) {
	return c.request(ctx, http.MethodGet, "/api/v1/turfs/get-all-turfs", nil, nil)
}

func (c *APIClient) GetTurf(ctx context.Context, id string) (*Response, error) {
	return c.request(ctx, http.MethodGet, "/api/v1/turfs/get-turf/"+id, nil, nil)
}

func (c *APIClient) DeleteTurf(ctx context.Context, id string) (*Response, error) {
	return c.request(ctx, http.MethodDelete, "/api/v1/turfs/delete-turf/"+id, nil, nil)
}

func (c *APIClient) CreateBooking(ctx context.Context, req *model.CreateBookingRequest) (*Response, error) {
	return c.request(ctx, http.MethodPost, "/api/v1/bookings/turfs", req, nil)
}

// CreateBookingIdempotent sends the request with an Idempotency-Key header.
func (c *APIClient) CreateBookingIdempotent(ctx context.Context, req *model.CreateBookingRequest, key string) (*Response, error) {
	return c.request(ctx, http.MethodPost, "/api/v1/bookings/turfs", req, map[string]string{"Idempotency-Key": key})
}

func (c *APIClient) CancelBooking(ctx context.Context, id string) (*Response, error) {
	return c.request(ctx, http.MethodPatch, "/api/v1/bookings/cancel/"+id, nil, nil)
}

func (c *APIClient) BookingsByTurf(ctx context.Context, turfID string) (*Response, error) {
	return c.request(ctx, http.MethodGet, "/api/v1/bookings/turf/"+turfID, nil, nil)
}

func (c *APIClient) BookingsByUser(ctx context.Context, userID string) (*Response, error) {
	return c.request(ctx, http.MethodGet, "/api/v1/bookings/user/"+userID, nil, nil)
}

func (c *APIClient) BookingsByOwner(ctx context.Context, ownerID string) (*Response, error) {
	return c.request(ctx, http.MethodGet, "/api/v1/bookings/owner/"+ownerID, nil, nil)
}

func accountPath(kind model.Kind, action string) string {
	return "/api/v1/" + kind.Plural() + "/" + action
}

func (c *APIClient) keepTokens(resp *Response) error {
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	var pair model.TokenPair
	if err := resp.DecodeData(&pair); err != nil {
		return fmt.Errorf("failed to decode token pair: %w", err)
	}
	c.AccessToken = pair.AccessToken
	c.RefreshToken = pair.RefreshToken
	return nil
}

func (c *APIClient) request(ctx context.Context, method, path string, body any, headers map[string]string) (*Response, error) {
	var reqBody io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		Response: resp,
		Body:     respBody,
	}, nil
}

func (c *APIClient) WaitForHealthy(maxWait time.Duration) error {
	deadline := time.Now().Add(maxWait)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		resp, err := c.HTTPClient.Get(c.BaseURL + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return nil
		}
		if resp != nil {
			resp.Body.Close()
		}
		<-ticker.C
	}

	return fmt.Errorf("service did not become healthy within %v", maxWait)
}

func GetErrorMessage(resp *Response) string {
	var errResp struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := resp.DecodeJSON(&errResp); err != nil {
		return fmt.Sprintf("failed to unmarshal error: %v", err)
	}

	if errResp.Error != "" {
		return errResp.Error
	}
	return errResp.Code
}
