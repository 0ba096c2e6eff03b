// Package webhook posts captured audio to a workflow webhook and decodes the
// transcript it answers with.
package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"voxhook/config"
)

const (
	DefaultFieldName = "data"
	DefaultFileName  = "audio_input.bin"
)

var ErrInvalidResponse = errors.New("invalid workflow response")

// HTTPError is returned for any non-2xx answer from the webhook.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP Error: Failed to trigger workflow. Status: %d", e.StatusCode)
}

type Options struct {
	URL       string
	FieldName string
	FileName  string
	Timeout   time.Duration
	Headers   map[string]string
}

type Client struct {
	opts   Options
	client *TracedClient
}

func New(opts Options) *Client {
	if opts.FieldName == "" {
		opts.FieldName = DefaultFieldName
	}
	if opts.FileName == "" {
		opts.FileName = DefaultFileName
	}
	return &Client{opts: opts, client: NewTracedClient(opts.Timeout)}
}

func (c *Client) URL() string { return c.opts.URL }

type Response struct {
	StatusCode int
	Body       []byte
	// Transcript is set when the body's "transcript" field is truthy: a
	// non-empty string, a non-zero number or true. Arrays and objects are
	// shown as JSON instead.
	Transcript string
	Metrics    *NetworkMetrics
}

func (r *Response) HasTranscript() bool { return r.Transcript != "" }

// Display is the text shown to the user: the transcript when present,
// otherwise the body pretty-printed with two spaces.
func (r *Response) Display() string {
	if r.HasTranscript() {
		return r.Transcript
	}
	doc, err := decodeJSON(r.Body)
	if err != nil {
		return string(r.Body)
	}
	return doc.indent()
}

func (c *Client) encode(data []byte, contentType string) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(c.opts.FieldName), escapeQuotes(c.opts.FileName)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &body, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// Upload sends data as the single file part of a multipart POST. A non-2xx
// status yields *HTTPError; a 2xx body that is not JSON yields an error
// wrapping ErrInvalidResponse.
func (c *Client) Upload(ctx context.Context, data []byte, contentType string) (*Response, error) {
	body, formType, err := c.encode(data, contentType)
	if err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.URL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", formType)
	for k, v := range c.opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Response{StatusCode: resp.StatusCode, Body: resp.Body, Metrics: resp.Metrics},
			&HTTPError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	r := &Response{StatusCode: resp.StatusCode, Body: resp.Body, Metrics: resp.Metrics}
	transcript, err := parseTranscript(resp.Body)
	if err != nil {
		return r, err
	}
	r.Transcript = transcript
	return r, nil
}

func parseTranscript(body []byte) (string, error) {
	doc, err := decodeJSON(body)
	if err != nil {
		return "", fmt.Errorf("%w: body is not JSON: %v", ErrInvalidResponse, err)
	}
	if doc.kind != kindObject {
		return "", nil
	}
	v, ok := doc.fields["transcript"]
	if !ok || !v.truthy() || v.kind == kindArray || v.kind == kindObject {
		return "", nil
	}
	return v.text(), nil
}

// Probe checks that the webhook host answers at all.
func (c *Client) Probe(ctx context.Context) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.opts.URL, nil)
	if err != nil {
		return 0, 0, err
	}
	for k, v := range c.opts.Headers {
		req.Header.Set(k, v)
	}
	return c.client.Probe(req)
}

// OptionsFrom maps the webhook section of the config file.
func OptionsFrom(cfg config.WebhookConfig) Options {
	return Options{
		URL:       cfg.URL,
		FieldName: cfg.FieldName,
		FileName:  cfg.FileName,
		Timeout:   time.Duration(cfg.TimeoutMS) * time.Millisecond,
		Headers:   cfg.Headers,
	}
}
