package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header carries the request correlation id.
const Header = "X-Ray-Id"

// New returns a middleware that assigns every request a ray id. An id
// supplied by the caller is kept so correlation spans services; otherwise a
// fresh UUID is generated. The id is stored in Locals for logging and
// echoed in the response header.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(Header)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals("ray_id", rid)
		c.Set(Header, rid)
		return c.Next()
	}
}
