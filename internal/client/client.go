// Package client talks to the portal HTTP API on behalf of portalctl.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recruitment_portal/internal/model"
)

const defaultTimeout = 15 * time.Second

// Client is a thin JSON client for the /api routes
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// New creates a Client for baseURL (e.g. http://localhost:8080). A nil
// httpClient gets a default one with a timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// WithToken returns a copy of the client that sends token as a bearer credential
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	reqURL := c.baseURL + "/api" + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return responseError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func responseError(status int, data []byte) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(data, &body)
	apiErr := &APIError{StatusCode: status, Message: body.Error}

	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrUnauthorized, apiErr)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrForbidden, apiErr)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, apiErr)
	}
	return apiErr
}

// Login exchanges credentials for a token
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, model.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListJobs(ctx context.Context, department, search string) ([]model.Job, error) {
	query := url.Values{}
	if department != "" {
		query.Set("department", department)
	}
	if search != "" {
		query.Set("q", search)
	}
	var jobs []model.Job
	if err := c.do(ctx, http.MethodGet, "/jobs", query, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (c *Client) CreateJob(ctx context.Context, req model.CreateJobRequest) (*model.Job, error) {
	var job model.Job
	if err := c.do(ctx, http.MethodPost, "/jobs", nil, req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) ListApplications(ctx context.Context, status string) ([]model.Application, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	var apps []model.Application
	if err := c.do(ctx, http.MethodGet, "/applications", query, nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (c *Client) MyApplications(ctx context.Context) ([]model.Application, error) {
	var apps []model.Application
	if err := c.do(ctx, http.MethodGet, "/applications/my", nil, nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (c *Client) UpdateApplicationStatus(ctx context.Context, id, status string) (*model.Application, error) {
	var app model.Application
	path := "/applications/" + url.PathEscape(id) + "/status"
	if err := c.do(ctx, http.MethodPut, path, nil, model.UpdateStatusRequest{Status: status}, &app); err != nil {
		return nil, err
	}
	return &app, nil
}
