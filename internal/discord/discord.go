// Package discord announces generated favicon packs to a Discord channel
// through an incoming webhook.
package discord

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Mavwarf/favpack/internal/httputil"
)

// embedImage points at an attachment uploaded in the same request.
type embedImage struct {
	URL string `json:"url"`
}

type embed struct {
	Image embedImage `json:"image"`
}

// payload is the webhook body: plain content, plus an embed showing the
// preview inline when one is attached.
type payload struct {
	Content string  `json:"content"`
	Embeds  []embed `json:"embeds,omitempty"`
}

// Send posts the announcement text as a plain webhook message.
func Send(webhookURL, message string) error {
	body, err := json.Marshal(payload{Content: message})
	if err != nil {
		return fmt.Errorf("discord: marshal: %w", err)
	}

	resp, err := httputil.Post(webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord: post: %w", err)
	}
	defer resp.Body.Close()
	return httputil.CheckStatus(resp, "discord: webhook")
}

// SendImage posts the announcement with an icon preview. The PNG travels
// as the multipart "file" part and the embed references it by name, so
// Discord renders the icon under the caption.
func SendImage(webhookURL, caption, fileName string, png []byte) error {
	p := payload{
		Content: caption,
		Embeds:  []embed{{Image: embedImage{URL: "attachment://" + fileName}}},
	}
	meta, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("discord: marshal preview: %w", err)
	}

	resp, err := httputil.PostMultipart(webhookURL, httputil.FileUpload{
		FieldName:   "file",
		FileName:    fileName,
		ContentType: "image/png",
		Data:        png,
	}, [][2]string{{"payload_json", string(meta)}})
	if err != nil {
		return fmt.Errorf("discord: upload preview %s: %w", fileName, err)
	}
	defer resp.Body.Close()
	return httputil.CheckStatus(resp, "discord: preview webhook")
}
