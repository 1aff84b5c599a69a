// Package kyc is a client for the Digio identity-verification API.
package kyc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"campusapi/internal/config"
)

const (
	createRequestPath = "/client/kyc/v2/request/with_template"
	fetchIDDataPath   = "/v3/client/kyc/fetch_id_data/"
	analyzeIDCardPath = "/v3/client/kyc/analyze/file/idcard"

	maxErrorBody = 4 << 10
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrInvalidRequest wraps every error raised before a request is sent.
var ErrInvalidRequest = errors.New("invalid kyc request")

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
}

// APIError is a non-2xx answer from Digio.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("digio: status %d: %s", e.Status, e.Body)
}

// Client calls Digio with basic auth. It is safe for concurrent use.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client
}

// NewClient builds a client whose outbound requests are traced.
func NewClient(cfg config.DigioConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("digio base_url, client_id and client_secret are required")
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// CreateRequest creates a template-based KYC request.
func (c *Client) CreateRequest(ctx context.Context, req CreateKYCRequest) (*KYCResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, invalid(err)
	}
	var out KYCResponse
	if err := c.postJSON(ctx, createRequestPath, req.withDefaults(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchIDData fetches the registry record for an identity document.
func (c *Client) FetchIDData(ctx context.Context, t IDCardType, req FetchIDCardRequest) (*FetchIDCardResponse, error) {
	if _, err := ParseIDCardType(string(t)); err != nil {
		return nil, invalid(err)
	}
	if err := req.check(t); err != nil {
		return nil, invalid(err)
	}
	var out FetchIDCardResponse
	if err := c.postJSON(ctx, fetchIDDataPath+string(t), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeIDCard uploads the front of an identity card for OCR and,
// when shouldVerify is set, registry verification.
func (c *Client) AnalyzeIDCard(ctx context.Context, front io.Reader, filename string, shouldVerify bool) (IDCardAnalysis, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("front_part", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, front); err != nil {
		return nil, fmt.Errorf("read id card: %w", err)
	}
	if err := mw.WriteField("should_verify", strconv.FormatBool(shouldVerify)); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out IDCardAnalysis
	if err := c.do(ctx, analyzeIDCardPath, mw.FormDataContentType(), &body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, path, "application/json", bytes.NewReader(b), out)
}

func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("digio %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode digio %s response: %w", path, err)
	}
	return nil
}
