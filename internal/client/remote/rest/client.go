// Package rest implements remote.Remote over the docsync HTTP API, which
// follows PostgREST conventions: filters as query parameters ("id=eq.X",
// "updated_at=gt.T", "user_id=is.null") under /rest/v1/{table}.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/docsync/internal/client/remote"
	"github.com/dmitrijs2005/docsync/internal/common"
	"github.com/dmitrijs2005/docsync/internal/netx"
)

const defaultTimeout = 15 * time.Second

// ErrNotConfigured is returned by New when the URL or API key is missing.
var ErrNotConfigured = errors.New("remote not configured")

type Config struct {
	BaseURL     string
	APIKey      string
	AccessToken string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

type Client struct {
	base        *url.URL
	apiKey      string
	accessToken string
	timeout     time.Duration
	http        *http.Client
}

var _ remote.Remote = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("bad remote url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	return &Client{
		base:        u,
		apiKey:      cfg.APIKey,
		accessToken: cfg.AccessToken,
		timeout:     cfg.Timeout,
		http:        cfg.HTTPClient,
	}, nil
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) header(owner remote.Owner) http.Header {
	h := http.Header{}
	h.Set(common.APIKeyHeaderName, c.apiKey)
	bearer := c.apiKey
	if c.accessToken != "" {
		bearer = c.accessToken
	}
	h.Set(common.AuthorizationHeaderName, "Bearer "+bearer)
	if owner.GuestID != "" {
		h.Set(common.GuestIDHeaderName, owner.GuestID)
	}
	return h
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, owner remote.Owner, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return mapError(netx.DoJSON(ctx, c.http, method, c.endpoint(path, q), c.header(owner), body, out))
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var se *netx.StatusError
	if !errors.As(err, &se) {
		return fmt.Errorf("%w: %v", remote.ErrUnavailable, err)
	}
	switch {
	case se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden:
		return fmt.Errorf("%w: %v", remote.ErrUnauthorized, se)
	case se.Code == http.StatusConflict:
		return fmt.Errorf("%w: %v", remote.ErrConflict, se)
	case se.Code == http.StatusTooManyRequests || se.Code >= 500:
		return fmt.Errorf("%w: %v", remote.ErrUnavailable, se)
	default:
		return fmt.Errorf("%w: %v", remote.ErrRemote, se)
	}
}

func tablePath(table string) string {
	return "/rest/v1/" + url.PathEscape(table)
}

// Upsert posts row with its ownership tags. It fails with remote.ErrConflict
// when the server holds a newer version.
func (c *Client) Upsert(ctx context.Context, table string, row json.RawMessage, owner remote.Owner) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(row, &obj); err != nil {
		return fmt.Errorf("%w: row is not an object: %v", remote.ErrRemote, err)
	}
	obj["guest_id"], _ = json.Marshal(owner.GuestID)
	if owner.UserID != "" {
		obj["user_id"], _ = json.Marshal(owner.UserID)
	} else {
		obj["user_id"] = json.RawMessage("null")
	}
	return c.do(ctx, http.MethodPost, tablePath(table), nil, owner, obj, nil)
}

func (c *Client) Delete(ctx context.Context, table, id string, owner remote.Owner) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return c.do(ctx, http.MethodDelete, tablePath(table), q, owner, nil, nil)
}

func (c *Client) SelectSince(ctx context.Context, table string, since time.Time, owner remote.Owner) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("updated_at", "gt."+since.UTC().Format(time.RFC3339Nano))
	q.Set("order", "updated_at.asc")
	var rows []json.RawMessage
	if err := c.do(ctx, http.MethodGet, tablePath(table), q, owner, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

type claimRequest struct {
	UserID string `json:"user_id"`
}

type claimResponse struct {
	Count int64 `json:"count"`
}

func (c *Client) ClaimGuestRows(ctx context.Context, table, guestID, userID string) (int64, error) {
	q := url.Values{}
	q.Set("guest_id", "eq."+guestID)
	q.Set("user_id", "is.null")
	var resp claimResponse
	err := c.do(ctx, http.MethodPatch, tablePath(table), q, remote.Owner{GuestID: guestID},
		claimRequest{UserID: userID}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

type userResponse struct {
	ID string `json:"id"`
}

// CurrentUser resolves the bearer token. Without a token the client is
// anonymous and no request is made.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	if c.accessToken == "" {
		return "", nil
	}
	var u userResponse
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, remote.Owner{}, nil, &u); err != nil {
		return "", err
	}
	return u.ID, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, remote.Owner{}, nil, nil)
}
