package events

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// TopicUserDeleted is the inbound topic; its subscription queue is
// <project>-user-deleted-sub.
const (
	TopicUserDeleted        = "user-deleted"
	UserDeletedSubscription = TopicUserDeleted + "-sub"
)

// CascadeDeleter removes every order owned by a user.
type CascadeDeleter interface {
	CascadeDeleteByUser(ctx context.Context, userID string) error
}

// CascadeHandler turns a user-deleted message body into a cascade delete.
type CascadeHandler struct {
	Orders CascadeDeleter
	Log    *zap.Logger
}

// Handle reports whether the cascade succeeded. The caller acks the message
// either way: delivery is at-most-once and a failure is only logged here.
func (h *CascadeHandler) Handle(ctx context.Context, messageID, body string) bool {
	userID := UserIDFromBody(body)
	log := h.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("message_id", messageID), zap.String("user_id", userID))

	if userID == "" {
		log.Warn("user-deleted message without user id, dropping")
		return false
	}

	if err := h.Orders.CascadeDeleteByUser(ctx, userID); err != nil {
		log.Error("cascade delete failed, message will not be redelivered", zap.Error(err))
		return false
	}
	log.Info("cascade delete handled")
	return true
}

// UserIDFromBody interprets the raw message body as the user id.
func UserIDFromBody(body string) string {
	return strings.TrimSpace(body)
}
