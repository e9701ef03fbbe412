// Package client talks to the expensehub HTTP API on behalf of one signed-in
// user.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/expensehub/internal/domain/expense"
	"github.com/geocoder89/expensehub/internal/domain/user"
)

// ErrNotSignedIn is returned by authenticated calls when the session holds no token.
var ErrNotSignedIn = errors.New("not signed in")

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Auth is the body of a successful sign-in.
type Auth struct {
	Token string      `json:"token"`
	User  user.Public `json:"user"`
}

type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// New returns a client for the API rooted at baseURL (for example
// "http://localhost:3000/api").
func New(baseURL string, timeout time.Duration, session *Session) *Client {
	if session == nil {
		session = NewSession(nil)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		session: session,
	}
}

func (c *Client) Session() *Session {
	return c.session
}

func (c *Client) Register(ctx context.Context, email, password string) (Auth, error) {
	return c.signIn(ctx, "/auth/register", map[string]string{"email": email, "password": password})
}

func (c *Client) Login(ctx context.Context, email, password string) (Auth, error) {
	return c.signIn(ctx, "/auth/login", map[string]string{"email": email, "password": password})
}

// GoogleSignIn exchanges a Google ID token for a session.
func (c *Client) GoogleSignIn(ctx context.Context, idToken string) (Auth, error) {
	return c.signIn(ctx, "/auth/google", map[string]string{"id_token": idToken})
}

// Logout forgets the session token. Tokens are stateless, so nothing is sent.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Clear(ctx)
}

func (c *Client) Me(ctx context.Context) (user.Public, error) {
	var out struct {
		User user.Public `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, true, &out); err != nil {
		return user.Public{}, err
	}
	return out.User, nil
}

func (c *Client) List(ctx context.Context, filter expense.ListFilter) ([]expense.Expense, error) {
	q := url.Values{}
	if filter.HasMonth() {
		q.Set("year", strconv.Itoa(filter.Year))
		q.Set("month", strconv.Itoa(int(filter.Month)))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	path := "/expenses"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []expense.Expense
	if err := c.do(ctx, http.MethodGet, path, nil, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, in expense.Input) (expense.Expense, error) {
	var out expense.Expense
	err := c.do(ctx, http.MethodPost, "/expenses", in, true, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id string, in expense.Input) (expense.Expense, error) {
	var out expense.Expense
	err := c.do(ctx, http.MethodPut, "/expenses/"+url.PathEscape(id), in, true, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/expenses/"+url.PathEscape(id), nil, true, nil)
}

func (c *Client) signIn(ctx context.Context, path string, body any) (Auth, error) {
	var out Auth
	if err := c.do(ctx, http.MethodPost, path, body, false, &out); err != nil {
		return Auth{}, err
	}
	if err := c.session.Set(ctx, out.Token); err != nil {
		return Auth{}, fmt.Errorf("save session: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, authed bool, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		token := c.session.Token()
		if token == "" {
			return ErrNotSignedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
