// Package paging talks to the remote paging directory (a Check-mk web API)
// that routes alerts to the on-call engineer.
//
// A membership change takes effect in two steps: an edit_users request that
// rewrites the user's contact-group list, followed by an activate_changes
// request that commits the pending edit. Both steps share the result-code
// contract: 0 means success, anything else is fatal to the caller's cycle.
// The client performs no retries; a hung endpoint hangs the caller unless the
// supplied context says otherwise.
package paging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/marcelomgarcia/oncall/internal/config"
)

// APIError reports a non-zero result code from the paging directory.
type APIError struct {
	Action string
	Code   int
	Result string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("paging: %s returned result code %d: %s", e.Action, e.Code, e.Result)
}

// Client is a synchronous wrapper over the paging-directory web API.
type Client struct {
	endpoint     string
	username     string
	secret       string
	contactGroup string
	sites        []string
	httpClient   *http.Client
}

// NewClient builds a client from the paging configuration. The httpClient is
// optional; http.DefaultClient is used when nil.
func NewClient(cfg config.Paging, httpClient *http.Client) (*Client, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("paging: url, username and secret must be configured")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:     cfg.URL,
		username:     cfg.Username,
		secret:       cfg.Secret,
		contactGroup: cfg.ContactGroup,
		sites:        cfg.Sites,
		httpClient:   httpClient,
	}, nil
}

type editUsersRequest struct {
	Users map[string]userEdit `json:"users"`
}

type userEdit struct {
	SetAttributes userAttributes `json:"set_attributes"`
}

type userAttributes struct {
	ContactGroups []string `json:"contactgroups"`
}

type activateChangesRequest struct {
	Sites               []string `json:"sites"`
	AllowForeignChanges string   `json:"allow_foreign_changes"`
}

type apiResponse struct {
	ResultCode int             `json:"result_code"`
	Result     json.RawMessage `json:"result"`
}

// SetMembership rewrites the user's contact-group list so that it includes
// the on-call group when onCall is true and excludes it otherwise. The edit
// stays pending until ActivateChanges commits it.
func (c *Client) SetMembership(ctx context.Context, userID string, onCall bool) error {
	groups := []string{}
	if onCall {
		groups = []string{c.contactGroup}
	}
	payload := editUsersRequest{
		Users: map[string]userEdit{
			userID: {SetAttributes: userAttributes{ContactGroups: groups}},
		},
	}
	return c.call(ctx, "edit_users", payload)
}

// ActivateChanges commits all pending edits on the configured sites.
func (c *Client) ActivateChanges(ctx context.Context) error {
	payload := activateChangesRequest{
		Sites:               c.sites,
		AllowForeignChanges: "1",
	}
	return c.call(ctx, "activate_changes", payload)
}

func (c *Client) call(ctx context.Context, action string, payload any) error {
	request, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("paging: encode %s request: %w", action, err)
	}

	form := url.Values{}
	form.Set("action", action)
	form.Set("_username", c.username)
	form.Set("_secret", c.secret)
	form.Set("request_format", "json")
	form.Set("output_format", "json")
	form.Set("request", string(request))

	separator := "?"
	if strings.Contains(c.endpoint, "?") {
		separator = "&"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+separator+form.Encode(), nil)
	if err != nil {
		return fmt.Errorf("paging: build %s request: %w", action, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paging: %s request failed: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("paging: read %s response: %w", action, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("paging: %s returned HTTP %d", action, resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("paging: decode %s response: %w", action, err)
	}
	if parsed.ResultCode != 0 {
		return &APIError{Action: action, Code: parsed.ResultCode, Result: strings.TrimSpace(string(parsed.Result))}
	}
	return nil
}
