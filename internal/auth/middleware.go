package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pulsefeedhq/pulsefeed/pkg/logger"
	storage "github.com/pulsefeedhq/pulsefeed/pkg/redis"
	"github.com/pulsefeedhq/pulsefeed/pkg/utils"
)

// Options configures the auth middleware.
type Options struct {
	Secret  string
	Rclient *storage.RedisClient
	Logger  *logger.Logger
}

// RequireAuth verifies the access token from the Authorization header or the
// access_token cookie, rejects blacklisted tokens, and stores the member
// identity in locals for handlers downstream.
func RequireAuth(opt Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return utils.Error(c, utils.NewError(fiber.StatusUnauthorized, "Missing access token")).Send()
		}

		if opt.Rclient != nil {
			blacklisted, err := opt.Rclient.Get(c.UserContext(), "blacklist:"+token).Result()
			if err == nil && blacklisted == "true" {
				return utils.Error(c, utils.NewError(fiber.StatusUnauthorized, "Token has been revoked")).Send()
			}
		}

		claims, err := VerifyToken(token, opt.Secret)
		if err != nil {
			if opt.Logger != nil {
				opt.Logger.Warn(c.UserContext()).WithMeta(utils.Map{
					"path": c.Path(),
				}).Logs("Rejected request with invalid token")
			}
			return utils.SendError(c, err)
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("username", claims.Username)
		// Refresh the request context so log entries carry the member id.
		c.SetUserContext(logger.SetupRoutesContext(c))
		return c.Next()
	}
}

func extractToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Cookies("access_token")
}
