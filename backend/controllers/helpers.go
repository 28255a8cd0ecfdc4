package controllers

import (
	"strconv"
	"strings"

	"promptmarket/backend/apperr"
	"promptmarket/backend/middleware"
	"promptmarket/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func parseIDParam(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parseIDList(raw string) ([]uint, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	seen := make(map[uint]struct{}, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil || id == 0 {
			return nil, false
		}
		if _, dup := seen[uint(id)]; dup {
			continue
		}
		seen[uint(id)] = struct{}{}
		ids = append(ids, uint(id))
	}
	return ids, true
}

// respondError logs unexpected failures and renders the error category.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	if apperr.KindOf(err) == apperr.KindInternal {
		log.Error("request failed",
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return utils.FromError(c, err)
}
