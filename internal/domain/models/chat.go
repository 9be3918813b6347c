package models

import (
	"io"
	"time"
)

type SenderType string

const (
	SenderStudent    SenderType = "student"
	SenderUniversity SenderType = "university"
	SenderSystem     SenderType = "system"
)

type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

// Message неизменяемо после создания, кроме флага IsRead,
// который переходит только из false в true.
type Message struct {
	ID         int64       `json:"id"`
	SenderType SenderType  `json:"sender_type"`
	SenderID   int64       `json:"sender_id"`
	Text       string      `json:"text,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	IsRead     bool        `json:"is_read"`
}

func MessageID(m *Message) int64 {
	return m.ID
}

func IsMessageRead(m *Message) bool {
	return m.IsRead
}

func MarkMessageRead(m *Message) bool {
	if m.IsRead {
		return false
	}

	m.IsRead = true

	return true
}

type ThreadStatus struct {
	Exists  bool `json:"exists"`
	CanSend bool `json:"can_send"`
}

type Presence struct {
	Online   bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

// Upload описывает файл, прикладываемый к сообщению. Всегда уходит через REST multipart.
type Upload struct {
	Name        string
	ContentType string
	Content     io.Reader
}
