package comments

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const (
	readPath          = "/comments/read"
	resolveThreadPath = "/comments/resolve-thread"
	createCommentPath = "/comments/create-comment"
)

var ErrUnauthorized = errors.New("comments api: unauthorized")

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

// ReadSnapshot fetches every thread with its comments.
func (c *Client) ReadSnapshot(ctx context.Context) (Payload, error) {
	var p Payload
	if err := c.doJSON(ctx, http.MethodGet, readPath, nil, &p, "read comments"); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// ReadThread fetches a single thread and its comments (the expansion payload).
func (c *Client) ReadThread(ctx context.Context, threadID int64) (Payload, error) {
	q := make(url.Values)
	q.Set("thread", strconv.FormatInt(threadID, 10))
	var p Payload
	if err := c.doJSON(ctx, http.MethodGet, readPath+"?"+q.Encode(), nil, &p, "read thread"); err != nil {
		return Payload{}, err
	}
	return p, nil
}

func (c *Client) ResolveThread(ctx context.Context, threadID int64, resolved bool) (Thread, error) {
	body := map[string]any{"id": threadID, "resolved": resolved}
	var tp ThreadPayload
	if err := c.doJSON(ctx, http.MethodPost, resolveThreadPath, body, &tp, "resolve thread"); err != nil {
		return Thread{}, err
	}
	return tp.Thread()
}

func (c *Client) CreateComment(ctx context.Context, threadID int64, content string) (Comment, error) {
	body := map[string]any{"thread": threadID, "content": content}
	var cp CommentPayload
	if err := c.doJSON(ctx, http.MethodPost, createCommentPath, body, &cp, "create comment"); err != nil {
		return Comment{}, err
	}
	return cp.Comment()
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, resource string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", resource, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", resource, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w", resource, ErrUnauthorized)
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s failed with status %d: %s", resource, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
