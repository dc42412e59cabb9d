package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/Mavwarf/favpack/internal/httputil"
)

// Send posts body to the given URL with the given Content-Type. Custom
// headers are applied after the default Content-Type, so callers can
// override it. Header values are expanded with os.ExpandEnv to support
// $VAR secrets.
func Send(url, contentType string, body []byte, headers map[string]string) error {
	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: new request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		req.Header.Set(k, os.ExpandEnv(v))
	}

	resp, err := httputil.Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer resp.Body.Close()

	return httputil.CheckStatus(resp, "webhook")
}

// SendJSON marshals v and posts it as application/json.
func SendJSON(url string, v any, headers map[string]string) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}
	return Send(url, "application/json", body, headers)
}
