package slack

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Mavwarf/favpack/internal/httputil"
)

// Field is one label/value pair shown under the message.
type Field struct {
	Label string
	Value string
}

type textObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type block struct {
	Type   string       `json:"type"`
	Text   *textObject  `json:"text,omitempty"`
	Fields []textObject `json:"fields,omitempty"`
}

type payload struct {
	Text   string  `json:"text"`
	Blocks []block `json:"blocks,omitempty"`
}

// Send posts a message to a Slack channel via incoming webhook URL. With
// fields the message is rendered as a section block followed by a field
// grid; text stays the notification fallback.
func Send(webhookURL, text string, fields ...Field) error {
	p := payload{Text: text}
	if len(fields) > 0 {
		grid := make([]textObject, len(fields))
		for i, f := range fields {
			grid[i] = textObject{Type: "mrkdwn", Text: fmt.Sprintf("*%s*\n%s", f.Label, f.Value)}
		}
		p.Blocks = []block{
			{Type: "section", Text: &textObject{Type: "mrkdwn", Text: text}},
			{Type: "section", Fields: grid},
		}
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("slack: marshal: %w", err)
	}

	resp, err := httputil.Post(webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: post: %w", err)
	}
	defer resp.Body.Close()

	return httputil.CheckStatus(resp, "slack: webhook")
}
