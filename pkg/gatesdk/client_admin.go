package gatesdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListUsers returns every account. Requires an admin identity cookie.
func (c *Client) ListUsers(ctx context.Context) ([]UserSummary, error) {
	resp, err := c.get(ctx, "/v1/admin/users")
	if err != nil {
		return nil, err
	}

	var users []UserSummary
	if err := decodeJSON(resp, &users, http.StatusOK); err != nil {
		return nil, err
	}
	return users, nil
}

// RecentEvents returns the newest audit events. limit <= 0 uses the server
// default. Requires an admin identity cookie.
func (c *Client) RecentEvents(ctx context.Context, limit int) ([]AuditEventSummary, error) {
	path := "/v1/admin/events"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}

	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var events []AuditEventSummary
	if err := decodeJSON(resp, &events, http.StatusOK); err != nil {
		return nil, err
	}
	return events, nil
}

// ResetStore wipes the entire store and seeds the default account. The
// endpoint only exists when the server was started with a reset token, and
// the token must match.
func (c *Client) ResetStore(ctx context.Context, token string) (*ResetResponse, error) {
	form := url.Values{"token": {token}}

	resp, err := c.postForm(ctx, "/v1/admin/reset", form)
	if err != nil {
		return nil, err
	}

	var reset ResetResponse
	if err := decodeJSON(resp, &reset, http.StatusOK); err != nil {
		return nil, err
	}
	return &reset, nil
}
