package userclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/board-result-api/pkg/errors"
)

// User is the directory's representation of an account.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	IsActive  bool   `json:"isActive"`
}

// Config points the client at the external user directory.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client queries the external user directory over HTTP. A missing
// user and an unreachable directory are different answers: the first
// is a definitive no, the second is a 503 for the caller to retry.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a directory client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// Lookup fetches a user record. A nil user with a nil error means the
// directory definitively does not know the id.
func (c *Client) Lookup(ctx context.Context, userID string) (*User, error) {
	endpoint := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build directory request")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		c.logger.Warn("user directory unreachable", zap.Error(err))
		return nil, appErrors.Clone(appErrors.ErrUpstreamUnavailable, "user directory is unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var user User
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed user directory response")
		}
		return &user, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode >= 500:
		c.logger.Warn("user directory error", zap.Int("status", resp.StatusCode))
		return nil, appErrors.Clone(appErrors.ErrUpstreamUnavailable, "user directory returned an error")
	default:
		return nil, appErrors.Wrap(fmt.Errorf("unexpected status %d", resp.StatusCode),
			appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "unexpected user directory response")
	}
}

// VerifyStudent reports whether the id belongs to an active account
// with a student-capable role. Unknown users are a definitive no;
// transport failures keep their unavailable error so callers never
// mistake an outage for a missing user.
func (c *Client) VerifyStudent(ctx context.Context, userID string) (bool, error) {
	user, err := c.Lookup(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	return user.IsActive && (user.Role == "STUDENT" || user.Role == "USER"), nil
}
