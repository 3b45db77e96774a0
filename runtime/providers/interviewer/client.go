// Package interviewer is the client for the AI conversation endpoint.
//
// A Converse call sends one utterance with the rendered system prompt and
// receives the interviewer reply, optionally with the candidate transcript and
// synthesized speech. Every failure is returned as a ContextualError of kind
// payload or network so that the turn loop can recover from it.
package interviewer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	pkgerrors "github.com/AltairaLabs/interviewkit/pkg/errors"
	"github.com/AltairaLabs/interviewkit/runtime/logger"
	"github.com/AltairaLabs/interviewkit/runtime/version"
)

const (
	componentName = "interviewer"

	converseEndpoint = "/converse"
	feedbackEndpoint = "/feedback"

	// VersionHeader carries the endpoint API version on every response.
	VersionHeader = "X-Interview-API-Version"

	// DefaultVersionConstraint accepts any 1.x endpoint.
	DefaultVersionConstraint = ">= 1.0.0, < 2.0.0"

	// DefaultAudioMIMEType is assumed when a response has audio but no MIME type.
	DefaultAudioMIMEType = "audio/mpeg"

	defaultTimeout  = 60 * time.Second
	maxResponseSize = 32 << 20
)

// Request is one utterance plus the prompt state it is answered against.
type Request struct {
	Audio        []byte
	MIMEType     string
	SystemPrompt string
	ContextJSON  string
}

// Response is the interviewer reply.
type Response struct {
	Text       string
	Transcript string
	Audio      []byte
	MIMEType   string
	// APIVersion is the endpoint version reported in the response header, if any.
	APIVersion string
}

// HasAudio reports whether the reply carries synthesized speech.
func (r *Response) HasAudio() bool {
	return len(r.Audio) > 0
}

// Feedback is the endpoint's evaluation of a finished interview.
type Feedback struct {
	Summary      string   `json:"summary"`
	Score        *float64 `json:"score,omitempty"`
	Strengths    []string `json:"strengths,omitempty"`
	Improvements []string `json:"improvements,omitempty"`
	// Raw is the response body as received.
	Raw json.RawMessage `json:"-"`
}

// Client calls the conversation endpoint over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	client     *http.Client
	constraint *semver.Constraints
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client. The caller owns its transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// WithVersionConstraints sets the accepted endpoint API versions.
func WithVersionConstraints(constraint *semver.Constraints) Option {
	return func(c *Client) {
		c.constraint = constraint
	}
}

// NewClient creates a client for the endpoint rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("interviewer endpoint URL is required")
	}
	constraint, err := semver.NewConstraint(DefaultVersionConstraint)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		constraint: constraint,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ParseVersionConstraint parses a semver constraint such as ">= 1.2, < 2".
func ParseVersionConstraint(s string) (*semver.Constraints, error) {
	c, err := semver.NewConstraint(s)
	if err != nil {
		return nil, fmt.Errorf("invalid API version constraint %q: %w", s, err)
	}
	return c, nil
}

type converseRequest struct {
	Audio        string `json:"audio"`
	MIMEType     string `json:"mimeType"`
	SystemPrompt string `json:"systemPrompt"`
	ContextJSON  string `json:"contextJSON"`
}

type converseResponse struct {
	Text       *string `json:"text"`
	Transcript *string `json:"transcript"`
	Audio      *string `json:"audio"`
	MIMEType   *string `json:"mimeType"`
}

// Converse sends one utterance and returns the interviewer reply.
func (c *Client) Converse(ctx context.Context, req Request) (*Response, error) {
	if len(req.Audio) == 0 {
		return nil, pkgerrors.New(componentName, "Converse", ErrEmptyAudio).WithKind(pkgerrors.KindPayload)
	}

	body := converseRequest{
		Audio:        base64.StdEncoding.EncodeToString(req.Audio),
		MIMEType:     req.MIMEType,
		SystemPrompt: req.SystemPrompt,
		ContextJSON:  req.ContextJSON,
	}
	logged := map[string]any{
		"audio_bytes":  len(req.Audio),
		"mimeType":     req.MIMEType,
		"systemPrompt": req.SystemPrompt,
	}

	data, header, err := c.post(ctx, converseEndpoint, body, logged)
	if err != nil {
		return nil, c.wrap("Converse", err)
	}
	if err := validate(converseSchema, data); err != nil {
		return nil, c.wrap("Converse", err)
	}

	var wire converseResponse
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, c.wrap("Converse", fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}

	resp := &Response{APIVersion: header.Get(VersionHeader)}
	if wire.Text != nil {
		resp.Text = strings.TrimSpace(*wire.Text)
	}
	if resp.Text == "" {
		return nil, c.wrap("Converse", ErrMissingText)
	}
	if wire.Transcript != nil {
		resp.Transcript = strings.TrimSpace(*wire.Transcript)
	}
	if wire.Audio != nil && *wire.Audio != "" {
		audio, err := base64.StdEncoding.DecodeString(*wire.Audio)
		if err != nil {
			return nil, c.wrap("Converse", fmt.Errorf("%w: audio is not base64: %v", ErrMalformedResponse, err))
		}
		resp.Audio = audio
		resp.MIMEType = DefaultAudioMIMEType
		if wire.MIMEType != nil && *wire.MIMEType != "" {
			resp.MIMEType = *wire.MIMEType
		}
	}
	return resp, nil
}

type feedbackRequest struct {
	Transcript  string `json:"transcript"`
	ContextJSON string `json:"contextJSON,omitempty"`
}

// Feedback asks the endpoint to evaluate a finished interview transcript.
func (c *Client) Feedback(ctx context.Context, transcript, contextJSON string) (*Feedback, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, pkgerrors.New(componentName, "Feedback", errors.New("transcript is empty")).
			WithKind(pkgerrors.KindPayload)
	}

	body := feedbackRequest{Transcript: transcript, ContextJSON: contextJSON}
	data, _, err := c.post(ctx, feedbackEndpoint, body, body)
	if err != nil {
		return nil, c.wrap("Feedback", err)
	}
	if err := validate(feedbackSchema, data); err != nil {
		return nil, c.wrap("Feedback", err)
	}

	var fb Feedback
	if err := json.Unmarshal(data, &fb); err != nil {
		return nil, c.wrap("Feedback", fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	fb.Raw = json.RawMessage(data)
	return &fb, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body, logged any) ([]byte, http.Header, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "interviewkit/" + version.GetVersion(),
	}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	logger.APIRequest(componentName, http.MethodPost, url, headers, logged)

	resp, err := c.client.Do(req)
	if err != nil {
		logger.APIResponse(componentName, 0, "", err)
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}
	logger.APIResponse(componentName, resp.StatusCode, summarizeBody(data), nil)

	if resp.StatusCode != http.StatusOK {
		return nil, nil, newAPIError(resp.StatusCode, errorMessage(data))
	}
	if err := c.checkVersion(resp.Header.Get(VersionHeader)); err != nil {
		return nil, nil, err
	}
	return data, resp.Header, nil
}

func (c *Client) checkVersion(reported string) error {
	if reported == "" || c.constraint == nil {
		return nil
	}
	v, err := semver.NewVersion(reported)
	if err != nil {
		return fmt.Errorf("%w: unparseable version %q", ErrIncompatibleAPI, reported)
	}
	if !c.constraint.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrIncompatibleAPI, v, c.constraint)
	}
	return nil
}

// wrap attaches component context and the network kind to err.
func (c *Client) wrap(op string, err error) error {
	ce := pkgerrors.New(componentName, op, err).WithKind(pkgerrors.KindNetwork)
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		ce = ce.WithStatusCode(apiErr.StatusCode)
	}
	return ce
}

func errorMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	const maxLen = 200
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// summarizeBody keeps audio payloads out of debug logs.
func summarizeBody(body []byte) string {
	var m map[string]any
	if json.Unmarshal(body, &m) != nil {
		return fmt.Sprintf("<%d bytes>", len(body))
	}
	if audio, ok := m["audio"].(string); ok {
		m["audio"] = fmt.Sprintf("<%d base64 chars>", len(audio))
	}
	out, err := json.Marshal(m)
	if err != nil {
		return fmt.Sprintf("<%d bytes>", len(body))
	}
	return string(out)
}
