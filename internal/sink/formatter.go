package sink

import (
	"fmt"

	"github.com/central-university-dev/go-portal-realtime/internal/domain/models"
	"github.com/central-university-dev/go-portal-realtime/internal/events"
)

const (
	timeLayout    = "2006-01-02 15:04:05"
	previewLength = 1000
)

var categoryTitles = map[models.NotificationCategory]string{
	models.CategorySystem:      "Системное",
	models.CategoryApplication: "Заявка",
	models.CategoryMessage:     "Сообщение",
	models.CategoryOther:       "Другое",
}

func formatNotification(n *models.Notification, lang, fallback string) string {
	translation := n.Localize(lang, fallback)

	category, ok := categoryTitles[n.Category]
	if !ok {
		category = string(n.Category)
	}

	text := fmt.Sprintf("🔔 %s\n\n%s\n\n📄 Тип: %s", translation.Title, textPreview(translation.Body, previewLength), category)

	if !n.CreatedAt.IsZero() {
		text += "\n⏱️ Время: " + n.CreatedAt.Format(timeLayout)
	}

	return text
}

func formatStatus(e events.StatusChanged) string {
	return fmt.Sprintf("📬 Непрочитанных (%s): %d", e.Feed, e.UnreadCount)
}

func formatEvent(event events.Event, lang, fallback string) string {
	switch e := event.(type) {
	case events.NotificationReceived:
		return formatNotification(&e.Notification, lang, fallback)
	case events.StatusChanged:
		return formatStatus(e)
	default:
		return event.EventName()
	}
}

func textPreview(text string, length int) string {
	runes := []rune(text)
	if len(runes) <= length {
		return text
	}

	return string(runes[:length]) + "..."
}
