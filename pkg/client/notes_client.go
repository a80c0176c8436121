// Package client is a small HTTP client for the notes service, covering what
// a frontend needs: sign-in/sign-out, the current-user snapshot, note CRUD
// and the tenant upgrade call. It also carries the advisory create-note
// check the dashboard performs before enabling its create form.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// NotesClient represents a client session against the notes service. A
// session holds at most one bearer token; SignIn replaces it, SignOut drops
// it.
type NotesClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

// Note mirrors the service's note resource.
type Note struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    uint      `json:"user_id"`
	TenantID  uint      `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tenant mirrors the service's tenant resource.
type Tenant struct {
	ID               uint   `json:"id"`
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	SubscriptionPlan string `json:"subscription_plan"`
	NoteLimit        int    `json:"note_limit"`
}

// UserInfo is the identity part of auth responses.
type UserInfo struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// NoteUsage is the advisory quota snapshot from /me.
type NoteUsage struct {
	Count         int64 `json:"count"`
	Limit         int   `json:"limit"`
	CanCreateNote bool  `json:"can_create_note"`
}

// CurrentUser is the /me response: identity plus profile, tenant and note
// usage when the user has a provisioned profile.
type CurrentUser struct {
	User    UserInfo `json:"user"`
	Profile *struct {
		ID       uint   `json:"id"`
		TenantID uint   `json:"tenant_id"`
		Role     string `json:"role"`
	} `json:"profile,omitempty"`
	Tenant *Tenant    `json:"tenant,omitempty"`
	Notes  *NoteUsage `json:"notes,omitempty"`
}

// UpgradeResult is the response of a successful tenant upgrade.
type UpgradeResult struct {
	Message string `json:"message"`
	Tenant  Tenant `json:"tenant"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewNotesClient creates a client for the given service base URL.
func NewNotesClient(baseURL string) *NotesClient {
	return &NotesClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SignIn authenticates with email and password and stores the bearer token
// for subsequent calls.
func (c *NotesClient) SignIn(email, password string) (*UserInfo, error) {
	var resp loginResponse
	err := c.do(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}

	c.Token = resp.Token
	return &resp.User, nil
}

// SignOut ends the session and drops the stored token.
func (c *NotesClient) SignOut() error {
	err := c.do(http.MethodPost, "/auth/logout", nil, nil)
	c.Token = ""
	return err
}

// GetCurrentUser fetches the caller's identity, profile, tenant and note
// usage.
func (c *NotesClient) GetCurrentUser() (*CurrentUser, error) {
	var me CurrentUser
	if err := c.do(http.MethodGet, "/me", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// CanCreateNote is the client-side advisory quota check: it reports whether
// the tenant has room for another note according to the current /me
// snapshot. The server's create endpoint does not enforce this.
func (c *NotesClient) CanCreateNote() (bool, error) {
	me, err := c.GetCurrentUser()
	if err != nil {
		return false, err
	}
	if me.Notes == nil {
		return false, fmt.Errorf("no tenant profile for current user")
	}
	return me.Notes.CanCreateNote, nil
}

// ListNotes returns every note in the caller's tenant, newest first.
func (c *NotesClient) ListNotes() ([]Note, error) {
	var notes []Note
	if err := c.do(http.MethodGet, "/notes", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// CreateNote creates a note owned by the caller.
func (c *NotesClient) CreateNote(title, content string) (*Note, error) {
	var note Note
	err := c.do(http.MethodPost, "/notes", map[string]string{
		"title":   title,
		"content": content,
	}, &note)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// GetNote fetches one of the caller's own notes by ID.
func (c *NotesClient) GetNote(id uint) (*Note, error) {
	var note Note
	if err := c.do(http.MethodGet, fmt.Sprintf("/notes/%d", id), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// UpdateNote replaces the title and content of one of the caller's notes.
func (c *NotesClient) UpdateNote(id uint, title, content string) (*Note, error) {
	var note Note
	err := c.do(http.MethodPut, fmt.Sprintf("/notes/%d", id), map[string]string{
		"title":   title,
		"content": content,
	}, &note)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteNote deletes one of the caller's notes.
func (c *NotesClient) DeleteNote(id uint) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/notes/%d", id), nil, nil)
}

// UpgradeTenant upgrades the named tenant to the pro plan. The caller must
// be an admin of that tenant.
func (c *NotesClient) UpgradeTenant(slug string) (*UpgradeResult, error) {
	var result UpgradeResult
	err := c.do(http.MethodPost, fmt.Sprintf("/tenants/%s/upgrade", slug), nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// do performs a JSON request and decodes the response into out when given.
// Non-2xx responses are returned as errors carrying the service's error
// message.
func (c *NotesClient) do(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, errResp.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}
