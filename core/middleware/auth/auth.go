package auth

import "github.com/gofiber/fiber/v2"

// Header carries the API key.
const Header = "X-Api-Key"

// New returns a middleware that requires the configured API key on every
// request. An empty configured key disables the check, which is the local
// development default.
func New(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if apiKey == "" {
			return c.Next()
		}
		if c.Get(Header) != apiKey {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or missing api key",
			})
		}
		return c.Next()
	}
}
