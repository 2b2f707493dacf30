// Package supabase is a thin client for the two hosted services the tracker
// talks to: the PostgREST data API and the storage object API. Every request
// carries the project key in both the apikey and Authorization headers.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
	"treasure_hunt_backend/pkg/monitoring"
	"treasure_hunt_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

const (
	restPrefix    = "/rest/v1/"
	storagePrefix = "/storage/v1/object/"

	PreferMinimal        = "return=minimal"
	PreferRepresentation = "return=representation"
)

type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// APIError is a non-2xx answer from either service.
type APIError struct {
	Op      string
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: status %d (%s): %s", e.Op, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
}

// IsUniqueViolation reports whether err is a Postgres unique_violation passed
// through PostgREST.
func IsUniqueViolation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == "23505"
}

func (c *Client) doRequest(ctx context.Context, op, method, endpoint string, body io.Reader, header http.Header) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := tracing.StartClientSpan(ctx, "supabase."+op,
		attribute.String("http.method", method),
		attribute.String("supabase.endpoint", endpoint))

	start := time.Now()
	raw, err := c.send(ctx, op, method, endpoint, body, header)
	monitoring.ObserveBackend(op, start, err)
	tracing.EndSpan(span, err)

	return raw, err
}

func (c *Client) send(ctx context.Context, op, method, endpoint string, body io.Reader, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}

	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(op, resp.StatusCode, raw)
	}

	return raw, nil
}

func decodeError(op string, status int, raw []byte) *APIError {
	apiErr := &APIError{Op: op, Status: status, Message: strings.TrimSpace(string(raw))}

	var payload struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		// PostgREST sends the SQLSTATE as a string, storage sends the HTTP status as a number.
		var code string
		if json.Unmarshal(payload.Code, &code) != nil {
			code = strings.Trim(string(payload.Code), `"`)
		}
		apiErr.Code = code
		if payload.Message != "" {
			apiErr.Message = payload.Message
		} else if payload.Error != "" {
			apiErr.Message = payload.Error
		}
	}

	return apiErr
}

// Select runs a GET against a table and decodes the JSON array into out.
func (c *Client) Select(ctx context.Context, op, table string, query url.Values, out interface{}) error {
	endpoint := restPrefix + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	raw, err := c.doRequest(ctx, op, http.MethodGet, endpoint, nil, http.Header{
		"Accept": {"application/json"},
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}

// Insert POSTs one row. With PreferRepresentation the stored row is decoded
// into out; with PreferMinimal out may be nil and the empty body is ignored.
func (c *Client) Insert(ctx context.Context, op, table string, row interface{}, prefer string, out interface{}) error {
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	raw, err := c.doRequest(ctx, op, http.MethodPost, restPrefix+table, bytes.NewReader(body), http.Header{
		"Content-Type": {"application/json"},
		"Prefer":       {prefer},
	})
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}

// Upload stores r under bucket/key as a multipart form with a single "file" field.
func (c *Client) Upload(ctx context.Context, bucket, key string, r io.Reader, contentType string) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename=%q`, fileNameOf(key))},
			"Content-Type":        {contentType},
		})
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	_, err := c.doRequest(ctx, "upload_object", http.MethodPost, storagePrefix+objectPath(bucket, key), pr, http.Header{
		"Content-Type": {mw.FormDataContentType()},
	})
	// unblock the writer if the request ended before the body was consumed
	pr.Close()
	return err
}

func (c *Client) Remove(ctx context.Context, bucket, key string) error {
	_, err := c.doRequest(ctx, "delete_object", http.MethodDelete, storagePrefix+objectPath(bucket, key), nil, nil)
	return err
}

// PublicURL is where a stored object is served from when the bucket is public.
func (c *Client) PublicURL(bucket, key string) string {
	return c.baseURL + storagePrefix + "public/" + objectPath(bucket, key)
}

// Ping checks that the data API answers.
func (c *Client) Ping(ctx context.Context, table string) error {
	query := url.Values{"select": {"id"}, "limit": {"1"}}
	var rows []json.RawMessage
	return c.Select(ctx, "ping", table, query, &rows)
}

func objectPath(bucket, key string) string {
	segments := strings.Split(strings.Trim(key, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

func fileNameOf(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}
