// Package provision talks to the room provisioning API that issues rooms and
// access tokens.
package provision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultTimeout = 15 * time.Second

var ErrEmptyToken = errors.New("provisioning returned an empty token")

// APIError is a non-2xx answer from the provisioning API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provisioning: %d: %s", e.Status, e.Message)
}

type Room struct {
	Room  string `json:"room"`
	Token string `json:"token"`
}

type Client struct {
	base   *url.URL
	client *http.Client
}

func New(endpoint string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	u, err := url.Parse(strings.TrimSuffix(endpoint, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("endpoint %q must be absolute", endpoint)
	}
	return &Client{base: u, client: &http.Client{Timeout: timeout}}, nil
}

// CreateRoom asks for a new room and a token to join it.
func (c *Client) CreateRoom(ctx context.Context) (Room, error) {
	var out Room
	if err := c.do(ctx, http.MethodPost, "sessions/test/room/create", nil, &out); err != nil {
		return Room{}, err
	}
	if out.Token == "" {
		return Room{}, ErrEmptyToken
	}
	log.Info().Str("module", "provision").Str("room", out.Room).Msg("room created")
	return out, nil
}

// Token returns an access token for an existing room.
func (c *Client) Token(ctx context.Context, room string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	q := url.Values{"room": {room}}
	if err := c.do(ctx, http.MethodGet, "sessions/test/room/token", q, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", ErrEmptyToken
	}
	return out.Token, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, out any) error {
	u := c.base.JoinPath(path)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// decodeError prefers the server message; validation failures (422) nest it
// under errors.message.
func decodeError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
		Errors  struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	msg := body.Message
	if resp.StatusCode == http.StatusUnprocessableEntity && body.Errors.Message != "" {
		msg = body.Errors.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
