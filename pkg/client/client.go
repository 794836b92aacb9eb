package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"formkeeper/pkg/domain"
)

// Client calls the formkeeper server over HTTP. It implements the
// workflow gateway interfaces: auth provider, record rows, and blobs.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError represents a server error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// New constructs a formkeeper client.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SignUp registers an account and returns the confirmation token that
// the server hands back in place of a mail delivery channel.
func (c *Client) SignUp(email, password string) (string, error) {
	var resp struct {
		ConfirmationToken string `json:"confirmationToken"`
	}
	err := c.postJSON("/auth/signup", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ConfirmationToken, nil
}

// Confirm redeems an email confirmation token.
func (c *Client) Confirm(token string) error {
	return c.postJSON("/auth/confirm", "", map[string]string{"token": token}, nil)
}

// SignIn exchanges credentials for a session token.
func (c *Client) SignIn(email, password string) (domain.User, string, error) {
	var resp struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	err := c.postJSON("/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return domain.User{}, "", err
	}
	return resp.User, resp.Token, nil
}

// SignOut invalidates the session token.
func (c *Client) SignOut(token string) error {
	return c.postJSON("/auth/logout", token, struct{}{}, nil)
}

// RequestPasswordReset asks for a recovery token. The server answer is
// identical whether or not the email is registered.
func (c *Client) RequestPasswordReset(email string) error {
	return c.postJSON("/auth/password/reset", "", map[string]string{"email": email}, nil)
}

// CompletePasswordReset sets a new password using a recovery token.
func (c *Client) CompletePasswordReset(token, newPassword string) error {
	return c.postJSON("/auth/password/complete", "", map[string]string{
		"token":       token,
		"newPassword": newPassword,
	}, nil)
}

// UploadImage stores attachment bytes and returns the blob reference.
func (c *Client) UploadImage(token, name string, data []byte) (domain.BlobRef, error) {
	path := "/storage/objects?name=" + url.QueryEscape(name)
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return domain.BlobRef{}, err
	}
	addAuthHeader(req, token)
	req.Header.Set("Content-Type", "application/octet-stream")

	var ref domain.BlobRef
	if err := c.do(req, &ref); err != nil {
		return domain.BlobRef{}, err
	}
	return ref, nil
}

// DeleteObject removes a stored blob.
func (c *Client) DeleteObject(token, key string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/storage/objects/"+key, nil)
	if err != nil {
		return err
	}
	addAuthHeader(req, token)
	return c.do(req, nil)
}

// InsertRecord stores a new record row.
func (c *Client) InsertRecord(token string, rec domain.Record) (domain.Record, error) {
	var stored domain.Record
	err := c.postJSON("/records", token, map[string]any{
		"text":      rec.Text,
		"imageUrl":  rec.ImageURL,
		"imagePath": rec.ImagePath,
		"imageMeta": rec.ImageMeta,
	}, &stored)
	if err != nil {
		return domain.Record{}, err
	}
	return stored, nil
}

// ListRecords returns the caller's records, newest first.
func (c *Client) ListRecords(token string) ([]domain.Record, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/records", nil)
	if err != nil {
		return nil, err
	}
	addAuthHeader(req, token)

	var resp listRecordsResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// GetRecord retrieves one record by id.
func (c *Client) GetRecord(token, id string) (domain.Record, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/records/%s", c.baseURL, id), nil)
	if err != nil {
		return domain.Record{}, err
	}
	addAuthHeader(req, token)

	var rec domain.Record
	if err := c.do(req, &rec); err != nil {
		return domain.Record{}, err
	}
	return rec, nil
}

// DeleteRecord removes a record row. The attached blob is deleted
// separately through DeleteObject.
func (c *Client) DeleteRecord(token, id string) error {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/records/%s", c.baseURL, id), nil)
	if err != nil {
		return err
	}
	addAuthHeader(req, token)
	return c.do(req, nil)
}

func (c *Client) postJSON(path, token string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	addAuthHeader(req, token)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func addAuthHeader(req *http.Request, token string) {
	if strings.TrimSpace(token) == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

type listRecordsResponse struct {
	Items []domain.Record `json:"items"`
	Count int             `json:"count"`
}
