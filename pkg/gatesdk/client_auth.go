package gatesdk

import (
	"context"
	"net/http"
	"net/url"
)

// LoginPrompt reports the browsing session's attempt state, so a form can
// show the exceeded warning before another submission.
func (c *Client) LoginPrompt(ctx context.Context) (*LoginPromptResponse, error) {
	resp, err := c.get(ctx, "/v1/login")
	if err != nil {
		return nil, err
	}

	var prompt LoginPromptResponse
	if err := decodeJSON(resp, &prompt, http.StatusOK); err != nil {
		return nil, err
	}
	return &prompt, nil
}

// Login performs a full two-factor login. On success the identity cookie is
// stored in the client's jar and the returned response includes the
// role-dependent redirect target.
func (c *Client) Login(ctx context.Context, username, password, pin string) (*LoginResponse, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
		"pin":      {pin},
	}

	resp, err := c.postForm(ctx, "/v1/login", form)
	if err != nil {
		return nil, err
	}

	var login LoginResponse
	if err := decodeJSON(resp, &login, http.StatusOK); err != nil {
		return nil, err
	}
	return &login, nil
}

// Register creates a new account. Registration never authenticates: the new
// user still has to log in with both factors.
func (c *Client) Register(ctx context.Context, username, password, confirmPassword, pinkey string) (*RegisterResponse, error) {
	form := url.Values{
		"username":         {username},
		"password":         {password},
		"confirm_password": {confirmPassword},
		"pinkey":           {pinkey},
	}

	resp, err := c.postForm(ctx, "/v1/register", form)
	if err != nil {
		return nil, err
	}

	var reg RegisterResponse
	if err := decodeJSON(resp, &reg, http.StatusCreated); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Logout deactivates the current session. The server clears the identity
// cookie; the jar picks the expiry up automatically.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.postForm(ctx, "/v1/logout", url.Values{})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// CurrentSession returns the identity behind the stored cookie, or an
// *APIError with ErrorCodeUnauthorized when there is none.
func (c *Client) CurrentSession(ctx context.Context) (*SessionResponse, error) {
	resp, err := c.get(ctx, "/v1/session")
	if err != nil {
		return nil, err
	}

	var sess SessionResponse
	if err := decodeJSON(resp, &sess, http.StatusOK); err != nil {
		return nil, err
	}
	return &sess, nil
}
