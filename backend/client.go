// Package backend talks to the hosted assistant API over HTTP.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"go.ghostpane.dev/ghostpane/assistant"
	"go.ghostpane.dev/ghostpane/internal/types"
)

// ErrRateLimited maps the endpoint's throttling status. The UI shows a
// "slow down" message instead of a generic failure.
var ErrRateLimited = errors.New("backend: rate limited")

// ErrUnauthorized covers missing or rejected credentials.
var ErrUnauthorized = errors.New("backend: unauthorized")

// ErrOutOfTokens signals an exhausted usage balance.
var ErrOutOfTokens = errors.New("backend: no tokens remaining")

// ErrUnconfigured signals missing server-side credentials. Not
// user-recoverable, and must not look like a transient failure.
var ErrUnconfigured = errors.New("backend: service not configured")

// ErrMalformed signals an unparseable success response.
var ErrMalformed = errors.New("backend: malformed response")

const (
	askPath        = "/api/desktop/ask"
	transcribePath = "/api/desktop/transcribe"

	// Without a timeout the overlay would hang forever on a stalled
	// request mid-interview.
	defaultTimeout = 30 * time.Second

	// Transcription is forced to English regardless of spoken language.
	// Deliberate upstream behavior, carried over as-is.
	transcribeLanguage = "en"
)

// AskRequest is the payload for one assistant question.
type AskRequest struct {
	Question   string                    `json:"question"`
	Language   types.ProgrammingLanguage `json:"language"`
	Screenshot string                    `json:"screenshot,omitempty"` // base64 PNG or data URL
}

// AskResult is a successful assistant answer.
type AskResult struct {
	Response        types.AIResponse
	TokensRemaining int
}

// Client is an HTTP client for the assistant and transcription endpoints.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the given base URL. token may be empty;
// authenticated endpoints will then report ErrUnauthorized.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// askResponse mirrors the endpoint's JSON envelope. Response is kept raw:
// deployments return either the structured sections or a plain text blob
// that still needs section parsing.
type askResponse struct {
	Success         bool            `json:"success"`
	Response        json.RawMessage `json:"response"`
	TokensRemaining *int            `json:"tokensRemaining"`
	Error           string          `json:"error"`
}

// Ask submits a question and/or screenshot. An empty question with a
// screenshot is valid: the endpoint answers from the image alone.
func (c *Client) Ask(ctx context.Context, req AskRequest) (*AskResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal ask request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+askPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create ask request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read ask response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp.StatusCode, data)
	}

	var envelope askResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !envelope.Success || len(envelope.Response) == 0 {
		return nil, fmt.Errorf("%w: success=%v", ErrMalformed, envelope.Success)
	}

	result := &AskResult{
		Response: decodeResponse(envelope.Response, req.Language),
	}
	if envelope.TokensRemaining != nil {
		result.TokensRemaining = *envelope.TokensRemaining
	}
	return result, nil
}

// decodeResponse accepts both response shapes: the structured sections
// object, or a raw model-output string that still needs section parsing.
func decodeResponse(raw json.RawMessage, lang types.ProgrammingLanguage) types.AIResponse {
	var structured types.AIResponse
	if err := json.Unmarshal(raw, &structured); err == nil {
		structured.Language = lang
		return assistant.Normalize(structured)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return assistant.Parse(text, lang)
	}

	return assistant.Parse(string(raw), lang)
}

// Transcribe uploads a WAV clip and returns the transcript.
func (c *Client) Transcribe(ctx context.Context, clip []byte) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("audio", "clip.wav")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(clip); err != nil {
		return "", fmt.Errorf("write audio part: %w", err)
	}
	if err := form.WriteField("language", transcribeLanguage); err != nil {
		return "", fmt.Errorf("write language field: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("finalize form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+transcribePath, &body)
	if err != nil {
		return "", fmt.Errorf("create transcribe request: %w", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read transcribe response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(resp.StatusCode, data)
	}

	var result struct {
		Success bool   `json:"success"`
		Text    string `json:"text"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !result.Success {
		return "", fmt.Errorf("transcription failed: %s", result.Error)
	}
	return result.Text, nil
}

// statusError maps HTTP failures onto the error taxonomy. Rate limiting
// uses a distinct status so callers can show "slow down" messaging.
func (c *Client) statusError(status int, body []byte) error {
	var envelope struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &envelope)
	msg := envelope.Error
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, msg)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrOutOfTokens, msg)
	}
	if strings.Contains(strings.ToLower(msg), "not configured") {
		return fmt.Errorf("%w: %s", ErrUnconfigured, msg)
	}
	return fmt.Errorf("request failed (%d): %s", status, msg)
}
