// Package device talks to the bot's local HTTP endpoints.
package device

import (
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

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
)

const (
	DefaultStatusTimeout = 5 * time.Second
	DefaultSyncTimeout   = 30 * time.Second

	statusPath   = "/offline-status"
	setModePath  = "/set-mode"
	forceSyncPth = "/force-sync"
)

// ErrNotConfigured is returned when no device address is set.
var ErrNotConfigured = errors.New("device address is not configured")

// StatusError reports a non-2xx answer from the device.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("device %s status %d: %s", e.Path, e.Code, e.Body)
}

type Client struct {
	baseURL       string
	http          *http.Client
	statusTimeout time.Duration
	syncTimeout   time.Duration
}

// NewClient builds a client for the device at baseURL (e.g. http://192.168.1.50).
// Zero timeouts fall back to the defaults.
func NewClient(baseURL string, statusTimeout, syncTimeout time.Duration) *Client {
	if statusTimeout <= 0 {
		statusTimeout = DefaultStatusTimeout
	}
	if syncTimeout <= 0 {
		syncTimeout = DefaultSyncTimeout
	}
	return &Client{
		baseURL:       strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		http:          &http.Client{},
		statusTimeout: statusTimeout,
		syncTimeout:   syncTimeout,
	}
}

// FetchStatus polls GET /offline-status.
func (c *Client) FetchStatus(ctx context.Context) (models.ConnectionStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.statusTimeout)
	defer cancel()

	var status models.ConnectionStatus
	if err := c.do(ctx, http.MethodGet, statusPath, nil, "", &status); err != nil {
		return models.ConnectionStatus{}, err
	}
	status.ConnectionState = models.NormalizeState(status.ConnectionState)
	return status, nil
}

// SetMode pushes the operator's mode as the form field mode=0|1|2.
func (c *Client) SetMode(ctx context.Context, mode models.Mode) error {
	if !mode.Valid() {
		return models.ErrInvalidMode
	}
	ctx, cancel := context.WithTimeout(ctx, c.statusTimeout)
	defer cancel()

	form := url.Values{"mode": {strconv.Itoa(int(mode))}}
	return c.do(ctx, http.MethodPost, setModePath, strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded", nil)
}

// ForceSync asks the device to drain its own backlog. It may take much longer than a poll.
func (c *Client) ForceSync(ctx context.Context) (models.SyncResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.syncTimeout)
	defer cancel()

	result := models.SyncResult{}
	if err := c.do(ctx, http.MethodPost, forceSyncPth, nil, "", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return &StatusError{Path: path, Code: resp.StatusCode, Body: string(snippet)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
