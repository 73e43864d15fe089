package twitter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	errs "xfollowers/pkg/errors"
	"xfollowers/pkg/logger"
)

// Client is a bearer-token authenticated Twitter v1.1 API client
type Client struct {
	httpClient    *http.Client
	baseURL       string
	bearerToken   string
	fallbackDelay time.Duration
	logger        logger.Logger
}

// NewClient creates a new Twitter API client
func NewClient(baseURL, bearerToken string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:       baseURL,
		bearerToken:   bearerToken,
		fallbackDelay: 60 * time.Second,
		logger:        log,
	}
}

// SetFallbackDelay sets the wait used when a 429 carries no reset hint
func (c *Client) SetFallbackDelay(d time.Duration) {
	c.fallbackDelay = d
}

// doRequest performs an HTTP request with bearer authentication
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// GetJSON performs a GET request and decodes the JSON response
func (c *Client) GetJSON(url string, target interface{}) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// checkResponseStatus maps an HTTP response status to a typed error
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeAuth,
			Message: "bearer token rejected: " + apiErrorMessage(resp),
			Code:    resp.StatusCode,
		}
	case http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case http.StatusTooManyRequests:
		retryAfter := c.rateLimitDelay(resp)
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status":      resp.StatusCode,
			"url":         resp.Request.URL.String(),
			"retry_after": retryAfter,
		})
		return &errs.Error{
			Type:       errs.ErrorTypeRateLimit,
			Message:    "rate limit exceeded",
			Code:       resp.StatusCode,
			RetryAfter: retryAfter,
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		c.logger.ErrorWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeServerError,
			Message: "server error",
			Code:    resp.StatusCode,
		}
	default:
		if resp.StatusCode >= 400 {
			c.logger.ErrorWithFields("unexpected API error", map[string]interface{}{
				"status": resp.StatusCode,
				"url":    resp.Request.URL.String(),
			})
			return &errs.Error{
				Type:    errs.ErrorTypeUnknown,
				Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
				Code:    resp.StatusCode,
			}
		}
		return nil
	}
}

// rateLimitDelay derives the wait duration from the x-rate-limit-reset
// header, a unix timestamp of when the quota window resets. Falls back to
// the configured delay when the header is missing or invalid.
func (c *Client) rateLimitDelay(resp *http.Response) time.Duration {
	header := resp.Header.Get("x-rate-limit-reset")
	if header == "" {
		return c.fallbackDelay
	}

	resetTime, err := strconv.ParseInt(header, 10, 64)
	if err != nil {
		return c.fallbackDelay
	}

	delay := time.Until(time.Unix(resetTime, 0)) + time.Second
	if delay < 0 {
		delay = 0
	}
	return delay
}

// apiErrorMessage extracts the first error message from a Twitter error body
func apiErrorMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return ""
	}

	var errBody apiErrorBody
	if json.Unmarshal(body, &errBody) != nil || len(errBody.Errors) == 0 {
		return ""
	}
	return errBody.Errors[0].Message
}

// FetchFollowerIDs fetches one page of follower IDs for a handle
func (c *Client) FetchFollowerIDs(handle string, cursor int64, count int) (*FollowerIDsPage, error) {
	url := FollowerIDsURL(c.baseURL, handle, cursor, count)

	c.logger.DebugWithFields("fetching follower IDs page", map[string]interface{}{
		"handle": handle,
		"cursor": cursor,
	})

	var page FollowerIDsPage
	if err := c.GetJSON(url, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// LookupUsers resolves a batch of user IDs to full profiles.
// The batch must not exceed MaxLookupBatch entries.
func (c *Client) LookupUsers(ids []string) ([]User, error) {
	if len(ids) > MaxLookupBatch {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("lookup batch of %d exceeds API limit of %d", len(ids), MaxLookupBatch),
			Code:    0,
		}
	}

	url := UsersLookupURL(c.baseURL, ids)

	c.logger.DebugWithFields("looking up user details", map[string]interface{}{
		"batch_size": len(ids),
	})

	var users []User
	if err := c.GetJSON(url, &users); err != nil {
		return nil, err
	}

	return users, nil
}
