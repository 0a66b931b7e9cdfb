// Package predict is the HTTP client of the plant disease prediction service.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"leafscan/internal/config"
	"leafscan/internal/errors"
	"leafscan/internal/log"
	"leafscan/pkg/types"
)

// FileField is the multipart field carrying the image
const FileField = "file"

// maxResponseBytes bounds how much of a response body is read
const maxResponseBytes = 1 << 20

// Client talks to the prediction service.
type Client struct {
	baseURL     string
	predictPath string
	healthPath  string
	http        *http.Client
	logger      *log.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the developer trace logger
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		predictPath: "/predict",
		healthPath:  "/health",
		http:        &http.Client{Timeout: timeout},
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromConfig creates a client from the endpoint section of cfg.
func FromConfig(cfg *config.Config, opts ...Option) *Client {
	c := NewClient(cfg.Endpoint.BaseURL, cfg.Timeout(), opts...)
	c.predictPath = cfg.Endpoint.PredictPath
	c.healthPath = cfg.Endpoint.HealthPath
	return c
}

// BaseURL returns the service root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Predict uploads the image and decodes the classification.
func (c *Client) Predict(ctx context.Context, file *types.UploadedFile) (*types.PredictionResult, error) {
	if file == nil {
		return nil, errors.ErrNoFileLoaded
	}

	body, contentType, err := encodeFile(file)
	if err != nil {
		return nil, errors.NewTransportError("failed to encode upload", errors.RequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.predictPath, body)
	if err != nil {
		return nil, errors.NewTransportError("failed to build request", errors.RequestFailed, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	var raw map[string]json.RawMessage
	if err := c.do(req, &raw); err != nil {
		return nil, err
	}
	result, err := decodePrediction(raw)
	if err != nil {
		return nil, err
	}

	c.logger.With(
		log.F("file", file.Name),
		log.F("disease", result.DiseaseName),
		log.F("confidence", result.Confidence),
		log.F("elapsed", time.Since(start).String()),
	).Debug("prediction received")
	return result, nil
}

// requiredFields must be present and non-null in every prediction
var requiredFields = []string{
	"disease_name",
	"description",
	"confidence",
	"health_status",
	"causes",
	"prevention",
	"treatment",
}

// decodePrediction rejects bodies lacking any required field, so a partial
// answer never reaches the result panel.
func decodePrediction(body map[string]json.RawMessage) (*types.PredictionResult, error) {
	var missing []string
	for _, name := range requiredFields {
		v, ok := body[name]
		if !ok || string(bytes.TrimSpace(v)) == "null" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewTransportError("prediction is missing "+strings.Join(missing, ", "), errors.MalformedResponse, nil)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.NewTransportError("failed to decode prediction", errors.MalformedResponse, err)
	}
	var result types.PredictionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.NewTransportError("failed to decode prediction", errors.MalformedResponse, err)
	}
	if result.DiseaseName == "" {
		return nil, errors.NewTransportError("prediction has an empty disease_name", errors.MalformedResponse, nil)
	}
	return &result, nil
}

// Health queries the service status.
func (c *Client) Health(ctx context.Context) (*types.HealthReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.healthPath, nil)
	if err != nil {
		return nil, errors.NewTransportError("failed to build request", errors.RequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	var report types.HealthReport
	if err := c.do(req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewTransportError(fmt.Sprintf("%s %s failed", req.Method, req.URL.Path), errors.RequestFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.NewTransportError("failed to read response", errors.RequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var remote types.ErrorResponse
		_ = json.Unmarshal(data, &remote)
		return errors.NewTransportError("service returned an error", errors.BadStatus, nil).
			WithStatus(resp.StatusCode, remote.Error)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.NewTransportError("failed to decode response", errors.MalformedResponse, err)
	}
	return nil
}

func encodeFile(file *types.UploadedFile) (io.Reader, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FileField, escapeQuotes(file.Name)))
	header.Set("Content-Type", file.MediaType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
