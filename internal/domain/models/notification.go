package models

import (
	"time"
)

type NotificationCategory string

const (
	CategorySystem      NotificationCategory = "system"
	CategoryApplication NotificationCategory = "application"
	CategoryMessage     NotificationCategory = "message"
	CategoryOther       NotificationCategory = "other"
)

type Translation struct {
	Language string `json:"language"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

type Notification struct {
	ID           int64                `json:"id"`
	Category     NotificationCategory `json:"category"`
	IsRead       bool                 `json:"is_read"`
	CreatedAt    time.Time            `json:"created_at"`
	Translations []Translation        `json:"translations"`
}

func NotificationID(n *Notification) int64 {
	return n.ID
}

func IsNotificationRead(n *Notification) bool {
	return n.IsRead
}

func MarkNotificationRead(n *Notification) bool {
	if n.IsRead {
		return false
	}

	n.IsRead = true

	return true
}

// Localize возвращает перевод на языке lang, затем на fallback, затем первый доступный.
func (n *Notification) Localize(lang, fallback string) Translation {
	for _, t := range n.Translations {
		if t.Language == lang {
			return t
		}
	}

	for _, t := range n.Translations {
		if t.Language == fallback {
			return t
		}
	}

	if len(n.Translations) > 0 {
		return n.Translations[0]
	}

	return Translation{}
}
