package controllers

import (
	"promptmarket/backend/middleware"
	"promptmarket/backend/models"
	"promptmarket/backend/services"
	"promptmarket/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MaxBulkSummaryIDs caps GET /templates/ratings?ids=.
const MaxBulkSummaryIDs = 100

type RatingsController struct {
	Svc *services.EngagementService
	Log *zap.Logger
}

func NewRatingsController(svc *services.EngagementService, log *zap.Logger) *RatingsController {
	return &RatingsController{Svc: svc, Log: log.Named("ratings")}
}

// SubmitRatingRequest defines the request body for rating a template
type SubmitRatingRequest struct {
	EffectivenessRange string `json:"effectivenessRange" validate:"required,oneof=0-10 10-50 50-80 80-100" example:"50-80"`
}

// GetRatingSummary godoc
// @Summary Get template ratings
// @Description Returns the rating distribution, weighted average and the caller's own rating
// @Tags ratings
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} services.RatingSummary
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /templates/{id}/ratings [get]
func (rc *RatingsController) GetRatingSummary(c *fiber.Ctx) error {
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid template ID")
	}

	summary, err := rc.Svc.GetRatingSummary(c.UserContext(), templateID, middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, rc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, summary)
}

// GetRatingSummaries godoc
// @Summary Get ratings for several templates
// @Description Returns a rating summary per template id, for listings
// @Tags ratings
// @Produce json
// @Param ids query string true "Comma separated template IDs"
// @Success 200 {object} map[string]services.RatingSummary
// @Failure 400 {object} utils.ErrorResponse
// @Router /templates/ratings [get]
func (rc *RatingsController) GetRatingSummaries(c *fiber.Ctx) error {
	ids, ok := parseIDList(c.Query("ids"))
	if !ok {
		return utils.BadRequest(c, "ids must be a comma separated list of template IDs")
	}
	if len(ids) > MaxBulkSummaryIDs {
		return utils.BadRequest(c, "Too many template IDs")
	}

	summaries, err := rc.Svc.RatingSummaries(c.UserContext(), ids, middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, rc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, summaries)
}

// SubmitRating godoc
// @Summary Rate a template
// @Description Creates or replaces the caller's effectiveness rating
// @Tags ratings
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param input body SubmitRatingRequest true "Rating"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /templates/{id}/ratings [post]
func (rc *RatingsController) SubmitRating(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid template ID")
	}

	var input SubmitRatingRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	stored, err := rc.Svc.SubmitRating(c.UserContext(), templateID, user.ID, models.EffectivenessRange(input.EffectivenessRange))
	if err != nil {
		return respondError(c, rc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"effectivenessRange": stored,
	})
}
