package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

const statusSuccess = "Success"

type File struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// APIError is returned when the server answers with an error envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server responded with %d: %s", e.StatusCode, e.Message)
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Status  string          `json:"status"`
}

type Client struct {
	logger  *logrus.Logger
	baseURL string
	cli     *http.Client
}

func NewClient(logger *logrus.Logger, baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must include a scheme and host", baseURL)
	}

	return &Client{
		logger:  logger,
		baseURL: u.String(),
		cli: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Upload sends content as a multipart upload named name.
func (c *Client) Upload(ctx context.Context, name string, content []byte) (*File, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	_, err = fw.Write(content)
	if err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	err = mw.Close()
	if err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}
	payload := body.Bytes()

	u, err := url.JoinPath(c.baseURL, "/")
	if err != nil {
		return nil, fmt.Errorf("create url: %w", err)
	}

	resp, err := c.doRequestWithRetry(func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req, nil
	}, "Upload")
	if err != nil {
		return nil, fmt.Errorf("failed to upload with retry: %w", err)
	}
	defer resp.Body.Close()

	var file File
	err = c.decode(resp, "Upload", &file)
	if err != nil {
		return nil, err
	}

	return &file, nil
}

func (c *Client) List(ctx context.Context) ([]File, error) {
	u, err := url.JoinPath(c.baseURL, "/")
	if err != nil {
		return nil, fmt.Errorf("create url: %w", err)
	}

	resp, err := c.doRequestWithRetry(getRequest(ctx, u), "List")
	if err != nil {
		return nil, fmt.Errorf("failed to list files with retry: %w", err)
	}
	defer resp.Body.Close()

	var files []File
	err = c.decode(resp, "List", &files)
	if err != nil {
		return nil, err
	}

	return files, nil
}

// Get returns the content of the named file, as text.
func (c *Client) Get(ctx context.Context, name string) (string, error) {
	u, err := url.JoinPath(c.baseURL, url.PathEscape(name))
	if err != nil {
		return "", fmt.Errorf("create url: %w", err)
	}

	resp, err := c.doRequestWithRetry(getRequest(ctx, u), "Get")
	if err != nil {
		return "", fmt.Errorf("failed to get file with retry: %w", err)
	}
	defer resp.Body.Close()

	var content string
	err = c.decode(resp, "Get", &content)
	if err != nil {
		return "", err
	}

	return content, nil
}

func getRequest(ctx context.Context, u string) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}
}

func (c *Client) decode(resp *http.Response, method string, data any) error {
	var env envelope
	err := json.NewDecoder(resp.Body).Decode(&env)
	if err != nil {
		if resp.StatusCode != http.StatusOK {
			// not one of ours, e.g. a proxy error page
			return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		}
		return fmt.Errorf("json decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || env.Status != statusSuccess {
		c.logger.WithFields(logrus.Fields{
			"method":  method,
			"status":  resp.StatusCode,
			"message": env.Message,
		}).Debug("Request failed with an error response")
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	err = json.Unmarshal(env.Data, data)
	if err != nil {
		return fmt.Errorf("json decode response data: %w", err)
	}

	return nil
}

// doRequestWithRetry retries transport failures only. A fresh request is built for every attempt so the body can be
// replayed.
func (c *Client) doRequestWithRetry(newRequest func() (*http.Request, error), method string) (*http.Response, error) {
	bk := newExponentialBackoffConfig()
	resp, err := backoff.RetryWithData[*http.Response](func() (*http.Response, error) {
		req, err := newRequest()
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("could not create request: %w", err))
		}

		resp, err := c.cli.Do(req)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, backoff.Permanent(fmt.Errorf("could not make http call: %w", err))
			}
			c.logger.WithField("method", method).WithError(err).Error("Failed to make http request, retrying...")
			return nil, fmt.Errorf("http request failed: %w", err)
		}
		return resp, nil
	}, bk)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func newExponentialBackoffConfig() *backoff.ExponentialBackOff {
	return backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(time.Second*3),
		backoff.WithMaxInterval(time.Second),
		backoff.WithInitialInterval(time.Millisecond*100),
		backoff.WithMultiplier(2),
		backoff.WithRandomizationFactor(0.2),
	)
}
