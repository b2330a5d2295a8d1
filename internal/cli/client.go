package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// LoginResponse is the shared shape of register and login replies.
type LoginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID          string `json:"id"`
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		AvatarEmoji string `json:"avatar_emoji"`
	} `json:"user"`
}

func (c *Client) Register(ctx context.Context, username, email, password, petName string) (LoginResponse, error) {
	var out LoginResponse
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/auth/register", "", map[string]any{
		"username": username,
		"email":    email,
		"password": password,
		"pet_name": petName,
	}, &out, "")
	return out, err
}

func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	var out LoginResponse
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/auth/login", "", map[string]any{
		"username": username,
		"password": password,
	}, &out, "")
	return out, err
}

func (c *Client) Me(ctx context.Context, token string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/auth/me", token, nil, &out, "")
	return out, err
}

func (c *Client) Pet(ctx context.Context, token string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/pet", token, nil, &out, "")
	return out, err
}

func (c *Client) PetStatus(ctx context.Context, token string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/pet/status", token, nil, &out, "")
	return out, err
}

func (c *Client) RenamePet(ctx context.Context, token, name string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPut, "/v1/pet/name", token, map[string]any{
		"name": name,
	}, &out, "")
	return out, err
}

func (c *Client) AddSteps(ctx context.Context, token, idem string, steps int64) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/pet/steps", token, map[string]any{
		"steps": steps,
	}, &out, idem)
	return out, err
}

func (c *Client) DrinkWater(ctx context.Context, token, idem string, amountML int64) (map[string]any, error) {
	body := map[string]any{}
	if amountML > 0 {
		body["amount_ml"] = amountML
	}
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/pet/water", token, body, &out, idem)
	return out, err
}

func (c *Client) Stretch(ctx context.Context, token, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/pet/stretch", token, map[string]any{}, &out, idem)
	return out, err
}

func (c *Client) SleepEarly(ctx context.Context, token, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/pet/sleep-early", token, map[string]any{}, &out, idem)
	return out, err
}

func (c *Client) Feed(ctx context.Context, token, idem, foodType string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/pet/feed", token, map[string]any{
		"food_type": foodType,
	}, &out, idem)
	return out, err
}

func (c *Client) Ranking(ctx context.Context, token, scope string, limit int) (map[string]any, error) {
	path := "/v1/ranking?scope=" + url.QueryEscape(scope)
	if limit > 0 {
		path += fmt.Sprintf("&limit=%d", limit)
	}
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, path, token, nil, &out, "")
	return out, err
}

func (c *Client) Friends(ctx context.Context, token string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/friends", token, nil, &out, "")
	return out, err
}

func (c *Client) AddFriend(ctx context.Context, token, username string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/friends", token, map[string]any{
		"username": username,
	}, &out, "")
	return out, err
}

func (c *Client) RemoveFriend(ctx context.Context, token, username string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodDelete, "/v1/friends/"+url.PathEscape(username), token, nil, &out, "")
	return out, err
}

func (c *Client) TodayStats(ctx context.Context, token string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/stats/today", token, nil, &out, "")
	return out, err
}

func (c *Client) History(ctx context.Context, token string, days int) (map[string]any, error) {
	path := "/v1/stats/history"
	if days > 0 {
		path += fmt.Sprintf("?days=%d", days)
	}
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, path, token, nil, &out, "")
	return out, err
}

func (c *Client) Evolutions(ctx context.Context, token string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/stats/evolutions", token, nil, &out, "")
	return out, err
}

func (c *Client) Feedings(ctx context.Context, token string, limit int) (map[string]any, error) {
	path := "/v1/stats/feedings"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, path, token, nil, &out, "")
	return out, err
}

// Do replays an arbitrary queued command against the API.
func (c *Client) Do(ctx context.Context, method, path, token string, body map[string]any, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, method, path, token, body, &out, idem)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path, token string, in any, out any, idem string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
