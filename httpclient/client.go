package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/sjlee-dev/vidbrief/errors"
	"github.com/sjlee-dev/vidbrief/models"
)

// DefaultTimeout bounds a single upstream call unless the caller overrides
// it per request.
const DefaultTimeout = 8 * time.Second

// Result is the uniform envelope every upstream call resolves to. Exactly
// one of Data/Error is meaningful depending on Success.
type Result struct {
	Success bool             `json:"success"`
	Status  int              `json:"status"`
	Data    json.RawMessage  `json:"data,omitempty"`
	Meta    *models.Meta     `json:"meta,omitempty"`
	Error   *models.APIError `json:"error,omitempty"`
}

// Decode unmarshals the data payload of a successful result.
func (r *Result) Decode(v interface{}) error {
	if !r.Success {
		return errors.New("httpclient: cannot decode failed result")
	}
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// AppError converts a failed result into the service error taxonomy.
func (r *Result) AppError(op string) *apperrors.AppError {
	if r.Success || r.Error == nil {
		return nil
	}
	switch r.Error.Name {
	case "TimeoutError":
		return apperrors.Timeout(op, nil)
	case "NetworkError":
		return apperrors.Network(op, errors.New(r.Error.Message))
	default:
		e := apperrors.RemoteService(op, r.Error.Status, r.Error.Name, r.Error.Message)
		e.Details = r.Error.Details
		return e
	}
}

// Options configures a single request.
type Options struct {
	Timeout   time.Duration
	AuthToken string
}

type Client struct {
	http   *http.Client
	logger *logrus.Logger
}

func New() *Client {
	return &Client{
		// Per-request deadlines come from the context; the transport itself
		// stays unbounded so long summarize calls are not cut short.
		http:   &http.Client{},
		logger: logrus.StandardLogger(),
	}
}

func (c *Client) Get(ctx context.Context, url string, opts Options) *Result {
	return c.Do(ctx, http.MethodGet, url, nil, opts)
}

func (c *Client) Post(ctx context.Context, url string, payload interface{}, opts Options) *Result {
	return c.Do(ctx, http.MethodPost, url, payload, opts)
}

func (c *Client) Put(ctx context.Context, url string, payload interface{}, opts Options) *Result {
	return c.Do(ctx, http.MethodPut, url, payload, opts)
}

func (c *Client) Delete(ctx context.Context, url string, opts Options) *Result {
	return c.Do(ctx, http.MethodDelete, url, nil, opts)
}

// Do performs one JSON request and normalizes every outcome into a Result.
// It never returns a Go error; transport failures, timeouts, and remote
// error bodies all land in the envelope.
func (c *Client) Do(ctx context.Context, method, url string, payload interface{}, opts Options) *Result {
	const op = "httpclient.Do"

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body *bytes.Reader
	if payload != nil && method != http.MethodGet && method != http.MethodDelete {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return c.failure(http.StatusInternalServerError, "NetworkError", err.Error())
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return c.failure(http.StatusInternalServerError, "NetworkError", err.Error())
	}

	req.Header.Set("Content-Type", "application/json")
	if opts.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+opts.AuthToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.WithFields(logrus.Fields{
				"method":  method,
				"url":     url,
				"timeout": timeout,
			}).Warn("Upstream request timed out")
			return c.failure(
				http.StatusRequestTimeout,
				"TimeoutError",
				"The request timed out. Please try again.",
			)
		}
		c.logger.WithError(err).WithFields(logrus.Fields{
			"method": method,
			"url":    url,
		}).Error("Upstream request failed")
		return c.failure(http.StatusInternalServerError, "NetworkError", err.Error())
	}
	defer resp.Body.Close()

	// DELETE replies often carry no body; status alone decides.
	if method == http.MethodDelete {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return &Result{
				Success: true,
				Status:  resp.StatusCode,
				Data:    json.RawMessage("true"),
			}
		}
		return c.failure(resp.StatusCode, "Error", "Failed to delete resource")
	}

	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return c.failure(http.StatusInternalServerError, "NetworkError", readErr.Error())
	}

	var parsed struct {
		Data  json.RawMessage  `json:"data"`
		Meta  *models.Meta     `json:"meta"`
		Error *models.APIError `json:"error"`
	}
	decodeErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Unparseable error bodies fall back to the HTTP status text.
		if decodeErr != nil {
			return c.failure(resp.StatusCode, "Error", resp.Status)
		}
		// Pass a structured remote error through unchanged.
		if parsed.Error != nil && parsed.Error.Name != "" {
			return &Result{
				Success: false,
				Status:  resp.StatusCode,
				Error:   parsed.Error,
			}
		}
		return c.failure(resp.StatusCode, "Error", resp.Status)
	}

	if decodeErr != nil {
		return c.failure(http.StatusInternalServerError, "NetworkError", decodeErr.Error())
	}

	data := parsed.Data
	if len(data) == 0 {
		// Replies outside the {data: ...} convention are returned whole.
		data = raw
	}

	return &Result{
		Success: true,
		Status:  resp.StatusCode,
		Data:    data,
		Meta:    parsed.Meta,
	}
}

func (c *Client) failure(status int, name, message string) *Result {
	return &Result{
		Success: false,
		Status:  status,
		Error: &models.APIError{
			Status:  status,
			Name:    name,
			Message: message,
		},
	}
}
