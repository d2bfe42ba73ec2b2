// Package client talks to a running server over its REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Ducheved/sharpmote/history"
	"github.com/Ducheved/sharpmote/network"
	"github.com/Ducheved/sharpmote/projection"
	"github.com/Ducheved/sharpmote/util"
	"github.com/samber/lo"
)

// Commands accepted by Command.
var Commands = []string{"play", "pause", "toggle", "next", "prev", "stop"}

// Error is a non-2xx answer. Problem is zero when the body was not a problem document.
type Error struct {
	Status  int
	Problem projection.Problem
}

func (e *Error) Error() string {
	if e.Problem.Detail != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Problem.Detail)
	}
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}

// Client is bound to one server.
type Client struct {
	base   string
	apiKey string
	http   *http.Client
}

// New creates a client for the server at base, e.g. http://127.0.0.1:8080.
func New(base, apiKey string) *Client {
	return &Client{base: strings.TrimRight(base, "/"), apiKey: apiKey, http: network.Client}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.Problem)
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Health checks that the server answers.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// State fetches the current state. An *Error with status 409 means no media session.
func (c *Client) State(ctx context.Context) (projection.State, error) {
	var st projection.State
	err := c.do(ctx, http.MethodGet, "/api/v1/state", nil, &st)
	return st, err
}

// Command sends one of Commands.
func (c *Client) Command(ctx context.Context, name string) error {
	if !lo.Contains(Commands, name) {
		return fmt.Errorf("unknown command %q", name)
	}
	return c.do(ctx, http.MethodPost, "/api/v1/"+name, nil, nil)
}

// SetVolume sets the absolute level in [0,1].
func (c *Client) SetVolume(ctx context.Context, level float64) error {
	return c.do(ctx, http.MethodPost, "/api/v1/volume/set", map[string]float64{"level": level}, nil)
}

// StepVolume changes the level by delta.
func (c *Client) StepVolume(ctx context.Context, delta float64) error {
	return c.do(ctx, http.MethodPost, "/api/v1/volume/step", map[string]float64{"delta": delta}, nil)
}

// ToggleMute flips the mute flag.
func (c *Client) ToggleMute(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/volume/mute", nil, nil)
}

// History lists recently played tracks, newest first.
func (c *Client) History(ctx context.Context) ([]history.Entry, error) {
	var entries []history.Entry
	err := c.do(ctx, http.MethodGet, "/api/v1/history", nil, &entries)
	return entries, err
}
