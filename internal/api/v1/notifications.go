package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pulsefeedhq/pulsefeed/internal/models"
	"github.com/pulsefeedhq/pulsefeed/pkg/logger"
	"github.com/pulsefeedhq/pulsefeed/pkg/utils"
	"gorm.io/gorm"
)

const notificationPageSize = 50

// NotificationsHandler serves the notifications produced by comment events.
type NotificationsHandler struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

// NewNotificationsHandler wires the handler dependencies.
func NewNotificationsHandler(db *gorm.DB, log *logger.Logger) *NotificationsHandler {
	return &NotificationsHandler{DB: db, Logger: log}
}

// List handles GET /api/v1/notifications: the authenticated member's most
// recent notifications, newest first.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	userID, err := actingUserID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var notifications []models.Notification
	dberr := h.DB.WithContext(c.UserContext()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(notificationPageSize).
		Find(&notifications).Error
	if dberr != nil {
		return utils.SendError(c, utils.WrapError(dberr, utils.ErrInternalServerError.Code, "Failed to list notifications"))
	}
	return utils.SendSuccess(c, notifications)
}

// MarkRead handles PUT /api/v1/notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := actingUserID(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	notificationID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	res := h.DB.WithContext(c.UserContext()).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return utils.SendError(c, utils.WrapError(res.Error, utils.ErrInternalServerError.Code, "Failed to update notification"))
	}
	if res.RowsAffected == 0 {
		return utils.SendError(c, utils.NewError(fiber.StatusNotFound, "Notification not found"))
	}
	return utils.Success(c).WithMessage("Notification marked as read").Send()
}
