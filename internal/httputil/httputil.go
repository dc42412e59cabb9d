package httputil

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"
)

// Client is a shared HTTP client with a 30-second timeout, used by all
// announcement packages to avoid indefinite hangs on unresponsive servers.
var Client = &http.Client{Timeout: 30 * time.Second}

// Post issues a POST using the shared Client.
func Post(url, contentType string, body io.Reader) (*http.Response, error) {
	return Client.Post(url, contentType, body)
}

// PostForm issues a POST with form data using the shared Client.
func PostForm(endpoint string, data url.Values) (*http.Response, error) {
	return Client.PostForm(endpoint, data)
}

// FileUpload describes an in-memory file to include in a multipart form POST.
type FileUpload struct {
	FieldName   string // form field name (e.g. "file", "image")
	FileName    string // name reported to the server
	ContentType string // MIME type; empty uses application/octet-stream
	Data        []byte
}

// MultipartBody builds a multipart form with text fields followed by the
// file. It returns the body and its Content-Type.
func MultipartBody(upload FileUpload, fields [][2]string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", kv[0], err)
		}
	}

	var part io.Writer
	var err error
	if upload.ContentType != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, upload.FieldName, upload.FileName))
		h.Set("Content-Type", upload.ContentType)
		part, err = w.CreatePart(h)
	} else {
		part, err = w.CreateFormFile(upload.FieldName, upload.FileName)
	}
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, "", fmt.Errorf("write file data: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// PostMultipart POSTs a multipart form built by MultipartBody using the
// shared Client. Fields are written before the file.
func PostMultipart(url string, upload FileUpload, fields [][2]string) (*http.Response, error) {
	body, contentType, err := MultipartBody(upload, fields)
	if err != nil {
		return nil, err
	}
	return Client.Post(url, contentType, body)
}

// CheckStatus returns an error if the response status code is not 2xx.
// The prefix is included in the error message for context (e.g. "discord: webhook").
func CheckStatus(resp *http.Response, prefix string) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned %d: %s", prefix, resp.StatusCode, ReadSnippet(resp.Body))
	}
	return nil
}

// ReadSnippet reads up to 200 bytes from r for inclusion in error messages.
func ReadSnippet(r io.Reader) string {
	buf := make([]byte, 200)
	n, _ := io.ReadFull(r, buf)
	if n == 0 {
		return "(empty body)"
	}
	s := string(buf[:n])
	if n == 200 {
		s += "..."
	}
	return s
}
