package slack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// UserInfo is the directory record returned by LookupUser.
type UserInfo struct {
	Name  string
	Email string
}

// Client talks to the Slack Web API. All calls use a bounded timeout and
// return explicit errors; callers decide whether a failure is worth
// surfacing.
type Client struct {
	token   string
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

// NewClient builds a Slack Web API client for the given bot token.
func NewClient(token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		token:   token,
		baseURL: "https://slack.com/api",
		httpc:   &http.Client{Timeout: 5 * time.Second},
		logger:  logger,
	}
}

// SetBaseURL points the client at a different API root, for tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	User  *struct {
		RealName string `json:"real_name"`
		Profile  struct {
			Email string `json:"email"`
		} `json:"profile"`
	} `json:"user"`
}

// SendMessage posts text to a channel via chat.postMessage.
func (c *Client) SendMessage(channel, text string) error {
	_, err := c.call("chat.postMessage", map[string]string{
		"channel": channel,
		"text":    text,
	})
	return err
}

// AddReaction attaches an emoji reaction to the message identified by its
// channel and timestamp.
func (c *Client) AddReaction(channel, timestamp, emoji string) error {
	_, err := c.call("reactions.add", map[string]string{
		"channel":   channel,
		"timestamp": timestamp,
		"name":      emoji,
	})
	return err
}

// LookupUser resolves a platform user id via users.info.
func (c *Client) LookupUser(id string) (UserInfo, error) {
	resp, err := c.get("users.info", url.Values{"user": {id}})
	if err != nil {
		return UserInfo{}, err
	}
	if resp.User == nil {
		return UserInfo{}, fmt.Errorf("users.info: empty user in response")
	}
	return UserInfo{Name: resp.User.RealName, Email: resp.User.Profile.Email}, nil
}

func (c *Client) call(method string, args map[string]string) (*apiResponse, error) {
	body, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%s: encode: %w", method, err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)

	return c.do(method, req)
}

func (c *Client) get(method string, query url.Values) (*apiResponse, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/"+method+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	return c.do(method, req)
}

func (c *Client) do(method string, req *http.Request) (*apiResponse, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", method, err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("%s: slack error: %s", method, parsed.Error)
	}
	return &parsed, nil
}
