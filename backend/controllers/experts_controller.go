package controllers

import (
	"promptmarket/backend/services"
	"promptmarket/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ExpertsController struct {
	Svc *services.EngagementService
	Log *zap.Logger
}

func NewExpertsController(svc *services.EngagementService, log *zap.Logger) *ExpertsController {
	return &ExpertsController{Svc: svc, Log: log.Named("experts")}
}

// ListExperts godoc
// @Summary List experts
// @Description Lists users with the expert role and their verification state
// @Tags admin
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/experts [get]
func (ec *ExpertsController) ListExperts(c *fiber.Ctx) error {
	experts, err := ec.Svc.ListExperts(c.UserContext())
	if err != nil {
		return respondError(c, ec.Log, err)
	}

	result := make([]fiber.Map, 0, len(experts))
	for _, u := range experts {
		result = append(result, fiber.Map{
			"id":               u.ID,
			"username":         u.Username,
			"isVerifiedExpert": u.IsVerifiedExpert,
			"createdAt":        u.CreatedAt,
		})
	}
	return utils.Success(c, fiber.StatusOK, result)
}
