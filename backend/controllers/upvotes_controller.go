package controllers

import (
	"promptmarket/backend/middleware"
	"promptmarket/backend/services"
	"promptmarket/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UpvotesController struct {
	Svc *services.EngagementService
	Log *zap.Logger
}

func NewUpvotesController(svc *services.EngagementService, log *zap.Logger) *UpvotesController {
	return &UpvotesController{Svc: svc, Log: log.Named("upvotes")}
}

// GetUpvoteStatus godoc
// @Summary Get upvotes
// @Description Returns the upvote count and whether the caller has upvoted
// @Tags upvotes
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} services.UpvoteStatus
// @Failure 404 {object} utils.ErrorResponse
// @Router /templates/{id}/upvotes [get]
func (uc *UpvotesController) GetUpvoteStatus(c *fiber.Ctx) error {
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid template ID")
	}

	status, err := uc.Svc.GetUpvoteStatus(c.UserContext(), templateID, middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, status)
}

// ToggleUpvote godoc
// @Summary Toggle upvote
// @Description Adds the caller's upvote, or removes it if already present
// @Tags upvotes
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} services.UpvoteStatus
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /templates/{id}/upvotes/toggle [post]
func (uc *UpvotesController) ToggleUpvote(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid template ID")
	}

	status, err := uc.Svc.ToggleUpvote(c.UserContext(), templateID, user.ID)
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, status)
}
