package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/stoat-chat/stoatgo"
	"github.com/stoat-chat/stoatgo/internal/circuitbreaker"
	"github.com/stoat-chat/stoatgo/ratelimit"
)

// UploadFileResponse is the body the CDN host returns for a successful
// upload.
type UploadFileResponse struct {
	ID stoat.ID `json:"id"`
}

// UploadFile uploads a file to the media host under tag (e.g.
// "attachments", "avatars", "icons"), returning the resulting attachment
// id. Unlike the JSON endpoints this bypasses requestSpec's JSON body,
// since the CDN expects multipart/form-data.
func (c *Client) UploadFile(ctx context.Context, tag, filename string, content io.Reader) (*UploadFileResponse, error) {
	breaker := c.breakers.GetOrCreate("cdn")
	if !breaker.Allow() {
		return nil, stoat.NewTransportError(fmt.Errorf("httpapi: circuit open for cdn"))
	}

	out, err := c.uploadOnce(ctx, tag, filename, content)
	if weight := circuitbreaker.ClassifyError(err); weight > 0 {
		breaker.RecordError(weight)
	} else {
		breaker.RecordSuccess()
	}
	return out, err
}

func (c *Client) uploadOnce(ctx context.Context, tag, filename string, content io.Reader) (*UploadFileResponse, error) {
	path := "/" + tag
	key := ratelimit.Classify(http.MethodPost, path)
	if ok, wait := c.governor.Take(key); !ok {
		return nil, stoat.RetryAfter(wait)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, stoat.NewTransportError(fmt.Errorf("httpapi: create form file: %w", err))
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, stoat.NewTransportError(fmt.Errorf("httpapi: copy file content: %w", err))
	}
	if err := w.Close(); err != nil {
		return nil, stoat.NewTransportError(fmt.Errorf("httpapi: close multipart writer: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cdnURL+path, &buf)
	if err != nil {
		return nil, stoat.NewTransportError(err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, stoat.NewTransportError(err)
	}
	defer resp.Body.Close()
	c.governor.Observe(key, resp.Header)

	var out UploadFileResponse
	if err := classifyResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
