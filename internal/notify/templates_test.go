package notify

import (
	"strings"
	"testing"

	"github.com/atelierhq/atelier/internal/model"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		typ    model.NotificationType
		sender string
		want   string
	}{
		{model.NotificationMention, "Anna", "Anna mentioned you"},
		{model.NotificationComment, "Ben", "Ben commented"},
		{model.NotificationTaskAssigned, "Anna", "Anna assigned you a task"},
		{model.NotificationTaskCompleted, "", "Someone completed a task"},
		{model.NotificationDeadline24h, "", "Task due within 24 hours"},
		{model.NotificationDeadline48h, "ignored", "Task due within 48 hours"},
		{model.NotificationDeadline7d, "", "Task due within 7 days"},
		{model.NotificationType("mystery"), "Anna", "New activity"},
	}

	for _, tt := range tests {
		if got := Title(tt.typ, tt.sender); got != tt.want {
			t.Errorf("Title(%q, %q) = %q, want %q", tt.typ, tt.sender, got, tt.want)
		}
	}
}

func TestTruncateMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "hello", "hello"},
		{"exactly limit", strings.Repeat("x", 100), strings.Repeat("x", 100)},
		{"over limit", strings.Repeat("x", 101), strings.Repeat("x", 100) + "…"},
		{"multibyte", strings.Repeat("ö", 120), strings.Repeat("ö", 100) + "…"},
		{"whitespace trimmed", "  hi  ", "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateMessage(tt.in); got != tt.want {
				t.Errorf("TruncateMessage = %q, want %q", got, tt.want)
			}
		})
	}
}
