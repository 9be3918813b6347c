package models

import (
	"time"
)

type FrameType string

const (
	// входящие
	FrameNewMessage      FrameType = "new_message"
	FrameTyping          FrameType = "typing"
	FrameMessagesRead    FrameType = "messages_read"
	FramePresenceUpdate  FrameType = "presence_update"
	FrameError           FrameType = "error"
	FrameNewNotification FrameType = "new_notification"
	FrameUnreadCount     FrameType = "unread_count"
	FrameAllMarkedRead   FrameType = "all_marked_read"

	// исходящие
	FrameSendMessage FrameType = "send_message"
	FrameMarkRead    FrameType = "mark_read"
	FrameMarkAllRead FrameType = "mark_all_read"
)

type FrameEnvelope struct {
	Type FrameType `json:"type"`
}

type NewMessageFrame struct {
	Message Message `json:"message"`
}

type TypingFrame struct {
	UserID   int64 `json:"user_id"`
	IsTyping bool  `json:"is_typing"`
}

type MessagesReadFrame struct {
	MessageIDs []int64 `json:"message_ids"`
}

type PresenceUpdateFrame struct {
	IsOnline bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

type ErrorFrame struct {
	Message string `json:"message"`
}

type NewNotificationFrame struct {
	Notification Notification `json:"notification"`
}

type UnreadCountFrame struct {
	Count int `json:"count"`
}

type SendMessageCommand struct {
	Type FrameType `json:"type"`
	Text string    `json:"text"`
}

type TypingCommand struct {
	Type     FrameType `json:"type"`
	IsTyping bool      `json:"is_typing"`
}

type MarkReadCommand struct {
	Type           FrameType `json:"type"`
	NotificationID int64     `json:"notification_id,omitempty"`
}

type MarkAllReadCommand struct {
	Type FrameType `json:"type"`
}
