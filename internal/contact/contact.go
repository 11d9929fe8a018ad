// Package contact relays contact form submissions to a hosted form endpoint.
package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultEndpoint is the Formspree form that receives submissions.
const DefaultEndpoint = "https://formspree.io/f/xkonnywk"

// DefaultRejectedMessage is shown when a rejection carries no usable text.
const DefaultRejectedMessage = "Não foi possível enviar sua mensagem. Tente novamente em instantes."

// ErrNetwork marks submissions that never got an HTTP response.
var ErrNetwork = errors.New("contact: network error")

// Message is one contact form submission.
type Message struct {
	Name    string `json:"name" form:"name" binding:"required"`
	Email   string `json:"email" form:"email" binding:"required,email"`
	Message string `json:"message" form:"message" binding:"required"`
}

// RejectedError is returned when the endpoint answers with a non-2xx status.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("contact: rejected with status %d: %s", e.StatusCode, e.Message)
}

// Sender delivers contact messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client posts messages as JSON to a form endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l.With().Str("component", "contact").Logger() }
}

// NewClient returns a Client for endpoint. An empty endpoint uses DefaultEndpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send posts msg once, without retrying. It returns an error wrapping
// ErrNetwork when no response arrived and a *RejectedError for any non-2xx
// response.
func (c *Client) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("contact: encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("contact: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("contact submission failed")
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		c.logger.Info().Str("email", msg.Email).Msg("contact submission sent")
		return nil
	}

	rejected := &RejectedError{StatusCode: resp.StatusCode, Message: rejectionMessage(resp.Body)}
	c.logger.Warn().Int("status", resp.StatusCode).Str("reason", rejected.Message).Msg("contact submission rejected")
	return rejected
}

type errorBody struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Error any `json:"error"`
}

// rejectionMessage extracts the human-readable reason from a rejection body:
// every non-empty errors[].message joined by spaces, else a non-blank error
// string, else DefaultRejectedMessage.
func rejectionMessage(r io.Reader) string {
	var body errorBody
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err != nil {
		return DefaultRejectedMessage
	}

	var parts []string
	for _, e := range body.Errors {
		if e.Message != "" {
			parts = append(parts, e.Message)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if s, ok := body.Error.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return DefaultRejectedMessage
}

// Outcome is the user-visible result of a submission.
type Outcome string

const (
	OutcomeSent     Outcome = "sent"
	OutcomeRejected Outcome = "rejected"
	OutcomeNetwork  Outcome = "network_error"
)

// Classify maps the error returned by Send to an Outcome.
func Classify(err error) Outcome {
	var rejected *RejectedError
	switch {
	case err == nil:
		return OutcomeSent
	case errors.As(err, &rejected):
		return OutcomeRejected
	default:
		return OutcomeNetwork
	}
}
