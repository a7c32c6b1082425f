package spapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const (
	apiPrefix           = "/api/"
	maxResponseBodySize = 8 << 20 // 8 MiB guard for JSON bodies
	maxLoggedBodySize   = 512
	unknownFilename     = "unknown"
)

var looseFilenamePattern = regexp.MustCompile(`filename=(.+)`)

// endpoint builds https://server/api/{resource}
func (c *Client) endpoint(resource string) string {
	return c.baseURL + apiPrefix + strings.TrimLeft(resource, "/")
}

// do executes the request with the common headers and records metrics.
// The caller owns the response body.
func (c *Client) do(op string, req *http.Request) (*http.Response, error) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug().
		Str("op", op).
		Str("method", req.Method).
		Str("url", req.URL.Scheme+"://"+req.URL.Host+req.URL.Path).
		Str("request_id", requestID).
		Msg("Making Smart Prospective API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(op, "error").Inc()
		c.logger.Error().Err(err).Str("op", op).Str("request_id", requestID).Msg("Error from API call")
		return nil, err
	}
	requestsTotal.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}

// get performs a GET with the token as query parameter and treats the JSON
// response. Transport failures and 5xx/429 answers are retried when enabled.
func (c *Client) get(ctx context.Context, op, resource, token string) (Record, error) {
	target := c.endpoint(resource)
	query := url.Values{"token": {token}}.Encode()

	var result Record
	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target+"?"+query, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.do(op, req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()

		status := resp.StatusCode
		result, err = c.treatResponse(op, target, resp)
		if err != nil && !retryableStatus(status) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn().Err(err).Str("op", op).Dur("wait", wait).Msg("Retrying API call")
	}
	if err := backoff.RetryNotify(attempt, c.retryPolicy(ctx), notify); err != nil {
		return nil, wrapCallError(op, err)
	}
	return result, nil
}

func (c *Client) retryPolicy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.retryInterval
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.maxRetries)), ctx)
}

func retryableStatus(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests || status == http.StatusRequestTimeout
}

// post sends a form-encoded POST and treats the JSON response
func (c *Client) post(ctx context.Context, op, resource string, form url.Values) (Record, error) {
	target := c.endpoint(resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, wrapCallError(op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(op, req)
	if err != nil {
		return nil, wrapCallError(op, err)
	}
	defer resp.Body.Close()

	result, err := c.treatResponse(op, target, resp)
	return result, wrapCallError(op, err)
}

// postFile sends a multipart POST with the form fields and the file at path
// under field, then treats the JSON response
func (c *Client) postFile(ctx context.Context, op, resource string, form url.Values, field, path string) (Record, error) {
	body, contentType, err := multipartBody(form, field, path)
	if err != nil {
		c.logger.Error().Err(err).Str("op", op).Str("file", path).Msg("Cannot read the file to upload")
		return nil, newError(op, fmt.Errorf("%w: %w", ErrUploadFailed, err),
			"failure on file upload, maybe the file is not found or not readable: %s", path)
	}

	target := c.endpoint(resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return nil, wrapCallError(op, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(op, req)
	if err != nil {
		return nil, wrapCallError(op, err)
	}
	defer resp.Body.Close()

	result, err := c.treatResponse(op, target, resp)
	return result, wrapCallError(op, err)
}

func multipartBody(form url.Values, field, path string) (*bytes.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for key, values := range form {
		for _, v := range values {
			if err := w.WriteField(key, v); err != nil {
				return nil, "", err
			}
		}
	}
	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

// postToDownload sends a form-encoded POST and writes the returned file.
// It returns the path written.
func (c *Client) postToDownload(ctx context.Context, op, resource string, form url.Values, filename string) (string, error) {
	target := c.endpoint(resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return "", wrapCallError(op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(op, req)
	if err != nil {
		return "", wrapCallError(op, err)
	}
	defer resp.Body.Close()

	path, err := c.treatFileResponse(op, target, resp, filename)
	return path, wrapCallError(op, err)
}

// treatResponse parses the JSON body and checks the status code. Any status
// outside 2xx fails, as does a 2xx body that is not a JSON object.
func (c *Client) treatResponse(op, target string, resp *http.Response) (Record, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var payload Record
	jsonErr := json.Unmarshal(raw, &payload)
	if jsonErr != nil {
		c.logger.Error().Str("op", op).Str("response", truncate(raw)).Msg("Invalid json response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error().
			Str("op", op).
			Str("url", target).
			Int("status", resp.StatusCode).
			Str("response", truncate(raw)).
			Msg("Error from request")
		return nil, statusError(op, resp.StatusCode, raw)
	}
	if jsonErr != nil {
		return nil, &APIError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    "invalid json response",
			Body:       string(raw),
			Err:        fmt.Errorf("%w: %w", ErrInvalidResponse, jsonErr),
		}
	}
	return payload, nil
}

// treatFileResponse writes the response body to disk and returns the path
func (c *Client) treatFileResponse(op, target string, resp *http.Response, filename string) (string, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
		c.logger.Error().
			Str("op", op).
			Str("url", target).
			Int("status", resp.StatusCode).
			Str("response", truncate(raw)).
			Msg("Error from request")
		return "", statusError(op, resp.StatusCode, raw)
	}

	name, ok := downloadFilename(resp.Header.Get("Content-Disposition"), filename)
	if !ok {
		c.logger.Warn().
			Str("op", op).
			Interface("headers", resp.Header).
			Str("filename", name).
			Msg("Cannot find the filename in the response")
	}

	path := name
	if !filepath.IsAbs(path) && c.downloadDir != "" {
		path = filepath.Join(c.downloadDir, path)
	}
	if err := writeFile(path, resp.Body); err != nil {
		c.logger.Error().Err(err).Str("op", op).Str("path", path).Msg("Invalid file response")
		return "", newError(op, err, "cannot write downloaded file %s: %v", path, err)
	}

	c.logger.Debug().Str("op", op).Str("path", path).Msg("Downloaded file")
	return path, nil
}

func writeFile(path string, body io.Reader) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// downloadFilename picks the local name for a download. The served name comes
// from Content-Disposition; a requested name keeps only the served extension.
// ok is false when the header carried no usable name.
func downloadFilename(disposition, requested string) (string, bool) {
	served := servedFilename(disposition)
	switch {
	case served == "" && requested == "":
		return unknownFilename, false
	case served == "":
		return requested, false
	case requested == "":
		return served, true
	}
	if ext := filepath.Ext(served); ext != "" {
		return requested + ext, true
	}
	return requested, true
}

func servedFilename(disposition string) string {
	if disposition == "" {
		return ""
	}

	var name string
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		name = params["filename"]
	} else if m := looseFilenamePattern.FindStringSubmatch(disposition); m != nil {
		name = strings.Trim(strings.TrimSpace(m[1]), `"'`)
	}

	// Never let the server pick a directory
	name = filepath.Base(filepath.FromSlash(strings.ReplaceAll(name, `\`, "/")))
	if name == "." || name == string(filepath.Separator) || name == ".." {
		return ""
	}
	return name
}

func truncate(raw []byte) string {
	if len(raw) > maxLoggedBodySize {
		return string(raw[:maxLoggedBodySize]) + "..."
	}
	return string(raw)
}
