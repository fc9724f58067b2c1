// Package v1 holds the versioned HTTP handlers.
package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pulsefeedhq/pulsefeed/internal/comments"
	"github.com/pulsefeedhq/pulsefeed/pkg/logger"
	"github.com/pulsefeedhq/pulsefeed/pkg/utils"
)

// CommentsHandler exposes the comment engine over HTTP.
type CommentsHandler struct {
	Comments  *comments.Service
	Validator *utils.Validator
	Logger    *logger.Logger
}

// NewCommentsHandler wires the handler dependencies.
func NewCommentsHandler(svc *comments.Service, v *utils.Validator, log *logger.Logger) *CommentsHandler {
	return &CommentsHandler{Comments: svc, Validator: v, Logger: log}
}

// CommentInput is the create payload. Exactly one of post_id and parent_id
// must be set: post_id starts a thread, parent_id replies to a comment.
type CommentInput struct {
	PostID   string `json:"post_id" validate:"omitempty,uuid"`
	ParentID string `json:"parent_id" validate:"omitempty,uuid"`
	Content  string `json:"content" validate:"required,min=1,max=1000"`
}

// ContentInput is the modify payload.
type ContentInput struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

func actingUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := c.Locals("user_id").(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, utils.NewError(fiber.StatusUnauthorized, "Authentication required")
	}
	return id, nil
}

func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, utils.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

// Create handles POST /api/v1/comments.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	actorID, err := actingUserID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var input CommentInput
	if err := utils.StrictBodyParser(c, &input); err != nil {
		return utils.SendError(c, utils.NewError(fiber.StatusBadRequest, "Invalid request body", err.Error()))
	}
	if verr := h.Validator.Validate(&input); verr != nil {
		return utils.Error(c, utils.NewError(fiber.StatusBadRequest, "Validation failed")).WithData(verr).Send()
	}
	if (input.PostID == "") == (input.ParentID == "") {
		return utils.SendError(c, utils.NewError(fiber.StatusBadRequest, "Exactly one of post_id and parent_id must be set"))
	}

	var comment interface{}
	if input.ParentID != "" {
		parentID, err := uuid.Parse(input.ParentID)
		if err != nil {
			return utils.SendError(c, utils.NewError(fiber.StatusBadRequest, "Invalid parent_id"))
		}
		comment, err = h.Comments.CreateReply(c.UserContext(), parentID, actorID, input.Content)
		if err != nil {
			return utils.SendError(c, err)
		}
	} else {
		postID, err := uuid.Parse(input.PostID)
		if err != nil {
			return utils.SendError(c, utils.NewError(fiber.StatusBadRequest, "Invalid post_id"))
		}
		comment, err = h.Comments.CreateTopLevel(c.UserContext(), postID, actorID, input.Content)
		if err != nil {
			return utils.SendError(c, err)
		}
	}

	return utils.Success(c).
		WithStatus(fiber.StatusCreated).
		WithMessage("Comment created").
		WithData(comment).
		Send()
}

// Modify handles PUT /api/v1/comments/:id.
func (h *CommentsHandler) Modify(c *fiber.Ctx) error {
	actorID, err := actingUserID(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	commentID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	var input ContentInput
	if err := utils.StrictBodyParser(c, &input); err != nil {
		return utils.SendError(c, utils.NewError(fiber.StatusBadRequest, "Invalid request body", err.Error()))
	}
	if verr := h.Validator.Validate(&input); verr != nil {
		return utils.Error(c, utils.NewError(fiber.StatusBadRequest, "Validation failed")).WithData(verr).Send()
	}

	comment, err := h.Comments.Modify(c.UserContext(), commentID, actorID, input.Content)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.Success(c).WithMessage("Comment updated").WithData(comment).Send()
}

// Delete handles DELETE /api/v1/comments/:id.
func (h *CommentsHandler) Delete(c *fiber.Ctx) error {
	actorID, err := actingUserID(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	commentID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.Comments.Delete(c.UserContext(), commentID, actorID)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.Success(c).WithMessage("Comment deleted").WithData(result).Send()
}

// Get handles GET /api/v1/comments/:id.
func (h *CommentsHandler) Get(c *fiber.Ctx) error {
	commentID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	comment, err := h.Comments.Comment(c.UserContext(), commentID)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, comment)
}

// ListByPost handles GET /api/v1/comments/post/:postId.
func (h *CommentsHandler) ListByPost(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "postId")
	if err != nil {
		return utils.SendError(c, err)
	}
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", comments.DefaultPageSize)

	result, err := h.Comments.Thread(c.UserContext(), postID, page, limit)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result)
}

// ListReplies handles GET /api/v1/comments/replies/:parentId.
func (h *CommentsHandler) ListReplies(c *fiber.Ctx) error {
	parentID, err := parseIDParam(c, "parentId")
	if err != nil {
		return utils.SendError(c, err)
	}
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", comments.DefaultPageSize)

	result, err := h.Comments.Replies(c.UserContext(), parentID, page, limit)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result)
}
