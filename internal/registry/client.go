// Package registry is a minimal HTTP client for a Confluent-style
// schema registry. It covers only the calls the admin operations need;
// request validation, retries and schema-content handling live with the
// registry itself.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/config"
)

// ErrSubjectNotFound indicates the registry has no such subject.
var ErrSubjectNotFound = errors.New("subject not found")

// subjectNotFoundCode is the registry's error_code for a missing subject.
const subjectNotFoundCode = 40401

// Schema is one registered schema version.
type Schema struct {
	Subject    string `json:"subject"`
	ID         int    `json:"id"`
	Version    int    `json:"version"`
	SchemaType string `json:"schemaType,omitempty"`
	Schema     string `json:"schema"`
}

// APIError is a non-2xx response from the registry.
type APIError struct {
	StatusCode int
	Code       int    `json:"error_code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("registry error %d (code %d): %s", e.StatusCode, e.Code, e.Message)
}

// Client talks to one schema registry instance.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a registry client from configuration.
func NewClient(cfg config.RegistryConfig, logger *slog.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "registry_client"),
	}
}

// QualifySubject prefixes a subject with its registry context. The
// default context ("." or empty) leaves the name untouched.
func QualifySubject(registryContext, subject string) string {
	if registryContext == "" || registryContext == "." {
		return subject
	}
	return fmt.Sprintf(":.%s:%s", registryContext, subject)
}

// ListContexts returns the registry's known contexts.
func (c *Client) ListContexts(ctx context.Context) ([]string, error) {
	var contexts []string
	if err := c.do(ctx, http.MethodGet, "/contexts", nil, &contexts); err != nil {
		return nil, fmt.Errorf("list contexts: %w", err)
	}
	return contexts, nil
}

// ListSubjects returns the bare subject names in the given context.
func (c *Client) ListSubjects(ctx context.Context, registryContext string) ([]string, error) {
	path := "/subjects"
	prefix := ""
	if registryContext != "" && registryContext != "." {
		prefix = fmt.Sprintf(":.%s:", registryContext)
		path += "?subjectPrefix=" + url.QueryEscape(prefix)
	}

	var subjects []string
	if err := c.do(ctx, http.MethodGet, path, nil, &subjects); err != nil {
		return nil, fmt.Errorf("list subjects in context %q: %w", registryContext, err)
	}

	if prefix == "" {
		return subjects, nil
	}
	names := make([]string, 0, len(subjects))
	for _, s := range subjects {
		names = append(names, strings.TrimPrefix(s, prefix))
	}
	return names, nil
}

// GetLatestSchema fetches the latest version registered under a subject.
func (c *Client) GetLatestSchema(ctx context.Context, registryContext, subject string) (*Schema, error) {
	qualified := QualifySubject(registryContext, subject)
	path := fmt.Sprintf("/subjects/%s/versions/latest", url.PathEscape(qualified))

	var schema Schema
	if err := c.do(ctx, http.MethodGet, path, nil, &schema); err != nil {
		return nil, fmt.Errorf("get latest schema for %q: %w", subject, err)
	}
	schema.Subject = subject
	return &schema, nil
}

// RegisterSchema registers a schema under a subject and returns the
// assigned schema id.
func (c *Client) RegisterSchema(ctx context.Context, registryContext, subject string, schema *Schema) (int, error) {
	qualified := QualifySubject(registryContext, subject)
	path := fmt.Sprintf("/subjects/%s/versions", url.PathEscape(qualified))

	body := map[string]string{"schema": schema.Schema}
	if schema.SchemaType != "" {
		body["schemaType"] = schema.SchemaType
	}

	var resp struct {
		ID int `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return 0, fmt.Errorf("register schema for %q: %w", subject, err)
	}
	return resp.ID, nil
}

// DeleteSubject soft-deletes a subject and returns the deleted versions.
func (c *Client) DeleteSubject(ctx context.Context, registryContext, subject string) ([]int, error) {
	qualified := QualifySubject(registryContext, subject)
	path := fmt.Sprintf("/subjects/%s", url.PathEscape(qualified))

	var versions []int
	if err := c.do(ctx, http.MethodDelete, path, nil, &versions); err != nil {
		return nil, fmt.Errorf("delete subject %q: %w", subject, err)
	}
	return versions, nil
}

// CheckConnection verifies the registry answers at all.
func (c *Client) CheckConnection(ctx context.Context) error {
	var subjects []string
	if err := c.do(ctx, http.MethodGet, "/subjects", nil, &subjects); err != nil {
		return fmt.Errorf("registry unreachable: %w", err)
	}
	return nil
}

// do performs one registry call and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.schemaregistry.v1+json, application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/vnd.schemaregistry.v1+json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr := json.NewDecoder(resp.Body).Decode(apiErr); decodeErr != nil {
			apiErr.Message = resp.Status
		}
		if apiErr.Code == subjectNotFoundCode {
			return fmt.Errorf("%w: %s", ErrSubjectNotFound, apiErr.Message)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
