package controllers

import (
	"promptmarket/backend/middleware"
	"promptmarket/backend/services"
	"promptmarket/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CommentsController struct {
	Svc *services.EngagementService
	Log *zap.Logger
}

func NewCommentsController(svc *services.EngagementService, log *zap.Logger) *CommentsController {
	return &CommentsController{Svc: svc, Log: log.Named("comments")}
}

// AddCommentRequest defines the request body for adding a comment
type AddCommentRequest struct {
	Content  string `json:"content" validate:"required" example:"Works great with GPT-4o!"`
	ParentID *uint  `json:"parentId" validate:"omitempty,gt=0" example:"12"`
}

// AddTemplateComment godoc
// @Summary Add comment to template
// @Description Adds a comment or a reply to a template
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param input body AddCommentRequest true "Comment data"
// @Success 201 {object} models.Comment
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /templates/{id}/comments [post]
func (cc *CommentsController) AddTemplateComment(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid template ID")
	}

	var input AddCommentRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	comment, err := cc.Svc.CreateComment(c.UserContext(), templateID, user.ID, input.Content, input.ParentID)
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return utils.Created(c, comment)
}

// GetTemplateComments godoc
// @Summary Get template comments
// @Description Returns the comment tree of a template, newest threads first
// @Tags comments
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {array} models.CommentNode
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /templates/{id}/comments [get]
func (cc *CommentsController) GetTemplateComments(c *fiber.Ctx) error {
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid template ID")
	}

	tree, err := cc.Svc.GetComments(c.UserContext(), templateID)
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, tree)
}

// DeleteComment godoc
// @Summary Delete comment
// @Description Deletes a comment and all of its replies. Author or admin only.
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /comments/{id} [delete]
func (cc *CommentsController) DeleteComment(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid comment ID")
	}

	deleted, err := cc.Svc.DeleteComment(c.UserContext(), commentID, user.ID, user.IsAdmin())
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"deleted": deleted,
	})
}
