package notify

import (
	"strings"
	"unicode/utf8"

	"github.com/atelierhq/atelier/internal/model"
)

// MaxMessageLen caps the stored message body. Longer content is truncated
// with a trailing ellipsis.
const MaxMessageLen = 100

// titleTemplates maps a notification type to its title template. The
// {name} placeholder is replaced with the acting user's display name;
// system-generated types carry no placeholder.
var titleTemplates = map[model.NotificationType]string{
	model.NotificationMention:       "{name} mentioned you",
	model.NotificationComment:       "{name} commented",
	model.NotificationTaskAssigned:  "{name} assigned you a task",
	model.NotificationTaskCompleted: "{name} completed a task",
	model.NotificationDeadline24h:   "Task due within 24 hours",
	model.NotificationDeadline48h:   "Task due within 48 hours",
	model.NotificationDeadline7d:    "Task due within 7 days",
}

// Title resolves the notification title for a type, interpolating the
// sender's display name where the template calls for it.
func Title(typ model.NotificationType, senderName string) string {
	tmpl, ok := titleTemplates[typ]
	if !ok {
		return "New activity"
	}
	if senderName == "" {
		senderName = "Someone"
	}
	return strings.ReplaceAll(tmpl, "{name}", senderName)
}

// TruncateMessage shortens content to MaxMessageLen characters, appending
// an ellipsis when anything was cut.
func TruncateMessage(content string) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= MaxMessageLen {
		return content
	}
	runes := []rune(content)
	return string(runes[:MaxMessageLen]) + "…"
}
