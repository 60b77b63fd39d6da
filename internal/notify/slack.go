// Package notify formats pipeline events as Slack messages.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// EventType identifies the kind of pipeline event being announced.
type EventType string

const (
	EventDeployment EventType = "deployment"
	EventSecurity   EventType = "security"
	EventRelease    EventType = "release"
	EventCIFailure  EventType = "ci-failure"
)

// Event is a typed pipeline occurrence to be announced in chat.
type Event struct {
	Type    EventType
	Title   string
	Message string
	Success bool
	Fields  map[string]string // Extra context rendered as attachment fields
	LinkURL string            // Optional "view details" target
}

// BuildMessage maps an event into a Slack webhook payload. Colour is
// keyed off success/failure, the emoji off the event type.
func BuildMessage(e Event) *slack.WebhookMessage {
	colour := "good"
	if !e.Success {
		colour = "danger"
	}

	var fields []slack.AttachmentField
	for name, value := range e.Fields {
		fields = append(fields, slack.AttachmentField{
			Title: name,
			Value: value,
			Short: true,
		})
	}

	text := e.Message
	if e.LinkURL != "" {
		text = fmt.Sprintf("%s\n<%s|View details>", text, e.LinkURL)
	}

	return &slack.WebhookMessage{
		Text: fmt.Sprintf("%s *%s*", emojiFor(e), e.Title),
		Attachments: []slack.Attachment{
			{
				Color:  colour,
				Text:   text,
				Fields: fields,
			},
		},
	}
}

// Send formats the event and posts it to a Slack incoming webhook.
func Send(ctx context.Context, webhookURL string, e Event) error {
	msg := BuildMessage(e)
	if err := slack.PostWebhookContext(ctx, webhookURL, msg); err != nil {
		return fmt.Errorf("failed to post Slack notification: %w", err)
	}
	log.Info().
		Str("event_type", string(e.Type)).
		Str("title", e.Title).
		Msg("Slack notification sent")
	return nil
}

func emojiFor(e Event) string {
	switch e.Type {
	case EventDeployment:
		if e.Success {
			return ":rocket:"
		}
		return ":x:"
	case EventSecurity:
		return ":lock:"
	case EventRelease:
		return ":package:"
	case EventCIFailure:
		return ":rotating_light:"
	default:
		return ":bell:"
	}
}
