package telegram

import (
	"fmt"
	"net/url"

	"github.com/Mavwarf/favpack/internal/httputil"
)

// apiBase is the Bot API root; tests point it at a local server.
var apiBase = "https://api.telegram.org"

func endpoint(token, method string) string {
	return fmt.Sprintf("%s/bot%s/%s", apiBase, token, method)
}

// Send posts a message to a Telegram chat via the Bot API.
func Send(token, chatID, message string) error {
	resp, err := httputil.PostForm(endpoint(token, "sendMessage"), url.Values{
		"chat_id": {chatID},
		"text":    {message},
	})
	if err != nil {
		return fmt.Errorf("telegram: post: %w", err)
	}
	defer resp.Body.Close()

	return httputil.CheckStatus(resp, "telegram: API")
}

// SendPhoto uploads a PNG to a Telegram chat via the Bot API with the
// caption shown under it.
func SendPhoto(token, chatID, caption, fileName string, png []byte) error {
	resp, err := httputil.PostMultipart(endpoint(token, "sendPhoto"), httputil.FileUpload{
		FieldName:   "photo",
		FileName:    fileName,
		ContentType: "image/png",
		Data:        png,
	}, [][2]string{{"chat_id", chatID}, {"caption", caption}})
	if err != nil {
		return fmt.Errorf("telegram: post photo: %w", err)
	}
	defer resp.Body.Close()

	return httputil.CheckStatus(resp, "telegram: photo API")
}
