package middleware

import (
	"promptmarket/backend/apperr"
	"promptmarket/backend/config"
	"promptmarket/backend/models"
	"promptmarket/backend/store"
	"promptmarket/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const currentUserKey = "currentUser"

// CurrentUser returns the authenticated user, or nil on public routes.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(currentUserKey).(*models.User)
	return u
}

// CurrentUserID is CurrentUser's id, nil when unauthenticated.
func CurrentUserID(c *fiber.Ctx) *uint {
	if u := CurrentUser(c); u != nil {
		id := u.ID
		return &id
	}
	return nil
}

func loadUser(c *fiber.Ctx, cfg *config.Config, users store.UserStore) (*models.User, error) {
	userID, err := utils.ExtractUserIDFromToken(c, cfg)
	if err != nil {
		return nil, err
	}
	user, err := users.FindByID(c.UserContext(), userID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unknown user")
	}
	return user, err
}

func AuthMiddleware(cfg *config.Config, users store.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := loadUser(c, cfg, users)
		if err != nil {
			if utils.StatusFor(err) == fiber.StatusUnauthorized {
				return utils.Unauthorized(c, "Unauthorized")
			}
			return utils.FromError(c, err)
		}
		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// OptionalAuthMiddleware attaches the user when a valid token is present
// and lets anonymous requests through. A malformed token is still rejected.
func OptionalAuthMiddleware(cfg *config.Config, users store.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !utils.HasToken(c) {
			return c.Next()
		}
		user, err := loadUser(c, cfg, users)
		if err != nil {
			if utils.StatusFor(err) == fiber.StatusUnauthorized {
				return utils.Unauthorized(c, "Unauthorized")
			}
			return utils.FromError(c, err)
		}
		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		if !user.IsAdmin() {
			return utils.Forbidden(c, "Forbidden - Admin access required")
		}
		return c.Next()
	}
}
