// Package runner dispatches announcement hooks after a generation.
package runner

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Mavwarf/favpack/internal/config"
	"github.com/Mavwarf/favpack/internal/cooldown"
	"github.com/Mavwarf/favpack/internal/discord"
	"github.com/Mavwarf/favpack/internal/mqtt"
	"github.com/Mavwarf/favpack/internal/plugin"
	"github.com/Mavwarf/favpack/internal/slack"
	"github.com/Mavwarf/favpack/internal/telegram"
	"github.com/Mavwarf/favpack/internal/tmpl"
	"github.com/Mavwarf/favpack/internal/webhook"
)

// DefaultMessage is sent by message-based hooks without a message.
const DefaultMessage = "favpack: {kind} {name} ({bytes})"

// previewName is the file name attached previews are uploaded under.
const previewName = "apple-touch-icon.png"

// retryDelay is the pause before the second attempt of a remote hook.
var retryDelay = time.Second

// Event describes a finished generation. It is the JSON body of webhook
// hooks.
type Event struct {
	Time      time.Time `json:"time"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	ShortName string    `json:"short_name"`
	Source    string    `json:"source"`
	Bytes     int64     `json:"bytes"`
	SHA256    string    `json:"sha256"`
	Sizes     []int     `json:"sizes"`

	// Preview is an optional PNG uploaded by discord and telegram hooks
	// with attach set.
	Preview []byte `json:"-"`
}

// Vars returns the template variables for e.
func (e Event) Vars() tmpl.Vars {
	return tmpl.Vars{
		Name:      e.Name,
		ShortName: e.ShortName,
		Timestamp: strconv.FormatInt(e.Time.UnixMilli(), 10),
		Kind:      e.Kind,
		Source:    e.Source,
		Bytes:     humanize.Bytes(uint64(e.Bytes)),
	}
}

// FilterHooks returns the hooks that apply to a generation of the given
// kind. Hooks with When="" always run.
func FilterHooks(hooks []config.Hook, kind string) []config.Hook {
	out := make([]config.Hook, 0, len(hooks))
	for _, h := range hooks {
		if h.When == "" || h.When == kind {
			out = append(out, h)
		}
	}
	return out
}

// hookExec runs one hook; tests replace it.
var hookExec = execHook

// coolingDown drops hooks still inside their cooldown window for kind and
// records the rest as fired.
func coolingDown(hooks []config.Hook, kind string) []config.Hook {
	out := hooks[:0:0]
	for _, h := range hooks {
		if h.Cooldown > 0 {
			if cooldown.Check(h.Type, kind, h.Cooldown) {
				continue
			}
			cooldown.Record(h.Type, kind)
		}
		out = append(out, h)
	}
	return out
}

// Execute runs every hook matching ev.Kind and not on cooldown in parallel
// and waits for them. Each hook gets one retry. The first error (in hook order) is returned.
func Execute(hooks []config.Hook, creds config.Credentials, ev Event) error {
	hooks = coolingDown(FilterHooks(hooks, ev.Kind), ev.Kind)
	errs := make([]error, len(hooks))

	var wg sync.WaitGroup
	for i, h := range hooks {
		wg.Add(1)
		go func(idx int, h config.Hook) {
			defer wg.Done()
			if err := retryOnce(func() error { return hookExec(h, creds, ev) }); err != nil {
				errs[idx] = fmt.Errorf("hook %d (%s): %w", idx+1, h.Type, err)
			}
		}(i, h)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Announce is Execute for callers that treat hooks as best-effort: an
// error is printed to stderr and otherwise ignored.
func Announce(hooks []config.Hook, creds config.Credentials, ev Event) {
	if err := Execute(hooks, creds, ev); err != nil {
		fmt.Fprintf(os.Stderr, "runner: %v\n", err)
	}
}

func retryOnce(fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	time.Sleep(retryDelay)
	return fn()
}

func execHook(h config.Hook, creds config.Credentials, ev Event) error {
	vars := ev.Vars()
	msg := h.Message
	if msg == "" {
		msg = DefaultMessage
	}

	switch h.Type {
	case config.HookMQTT:
		var qos byte
		if h.QoS != nil {
			qos = byte(*h.QoS)
		}
		return mqtt.Publish(mqtt.Options{
			Broker:   h.Broker,
			ClientID: h.ClientID,
			Topic:    h.Topic,
			QoS:      qos,
			Retain:   h.Retain,
			Username: creds.MQTTUsername,
			Password: creds.MQTTPassword,
		}, tmpl.Expand(msg, vars))
	case config.HookWebhook:
		return webhook.SendJSON(h.URL, ev, h.Headers)
	case config.HookDiscord:
		if creds.DiscordWebhook == "" {
			return fmt.Errorf("discord hook requires credentials.discord_webhook in config")
		}
		if h.Attach && len(ev.Preview) > 0 {
			return discord.SendImage(creds.DiscordWebhook, tmpl.Expand(msg, vars), previewName, ev.Preview)
		}
		return discord.Send(creds.DiscordWebhook, tmpl.Expand(msg, vars))
	case config.HookSlack:
		if creds.SlackWebhook == "" {
			return fmt.Errorf("slack hook requires credentials.slack_webhook in config")
		}
		return slack.Send(creds.SlackWebhook, tmpl.Expand(msg, vars),
			slack.Field{Label: "Kind", Value: ev.Kind},
			slack.Field{Label: "Source", Value: ev.Source},
			slack.Field{Label: "Size", Value: vars.Bytes},
			slack.Field{Label: "SHA-256", Value: ev.SHA256})
	case config.HookTelegram:
		if creds.TelegramToken == "" || creds.TelegramChatID == "" {
			return fmt.Errorf("telegram hook requires credentials.telegram_token and telegram_chat_id in config")
		}
		if h.Attach && len(ev.Preview) > 0 {
			return telegram.SendPhoto(creds.TelegramToken, creds.TelegramChatID, tmpl.Expand(msg, vars), previewName, ev.Preview)
		}
		return telegram.Send(creds.TelegramToken, creds.TelegramChatID, tmpl.Expand(msg, vars))
	case config.HookCommand:
		return plugin.Run(h.Command, tmpl.Expand(msg, vars), h.Timeout, vars)
	default:
		return fmt.Errorf("unknown hook type: %q", h.Type)
	}
}
