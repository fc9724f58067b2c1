package comments

import (
	"context"
	"fmt"
	"time"

	"github.com/pulsefeedhq/pulsefeed/internal/models"
	"github.com/pulsefeedhq/pulsefeed/pkg/logger"
	"github.com/pulsefeedhq/pulsefeed/pkg/utils"
	"gorm.io/gorm"
)

const notificationWriteTimeout = 5 * time.Second

// NotificationSink turns comment-created events into notification rows for
// the post owner. Writes happen on a detached goroutine so event delivery
// never holds up the request; failures are logged and dropped.
type NotificationSink struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewNotificationSink builds a sink writing to db.
func NewNotificationSink(db *gorm.DB, log *logger.Logger) *NotificationSink {
	return &NotificationSink{db: db, log: log}
}

func (s *NotificationSink) CommentCreated(ev CommentCreatedEvent) {
	// Commenting on your own post notifies nobody.
	if ev.ActorID == ev.PostOwnerID {
		return
	}
	go s.deliver(ev)
}

func (s *NotificationSink) deliver(ev CommentCreatedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), notificationWriteTimeout)
	defer cancel()

	kind := models.NotificationTypeCommentPost
	message := fmt.Sprintf("%s commented on your post", ev.ActingUsername)
	if ev.IsReply {
		kind = models.NotificationTypeReplyComment
		message = fmt.Sprintf("%s replied to a comment on your post", ev.ActingUsername)
	}

	commentID := ev.CommentID
	postID := ev.PostID
	actorID := ev.ActorID
	notification := models.Notification{
		UserID:    ev.PostOwnerID,
		ActorID:   &actorID,
		Type:      kind,
		Message:   message,
		CommentID: &commentID,
		PostID:    &postID,
	}
	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		if s.log != nil {
			s.log.Error(ctx).WithMeta(utils.Map{
				"error":      err.Error(),
				"comment_id": ev.CommentID.String(),
				"post_id":    ev.PostID.String(),
			}).Logs("Failed to persist comment notification")
		}
	}
}
