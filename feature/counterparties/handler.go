package counterparties

import (
	"errors"

	"refdata-manager/core/logger"
	"refdata-manager/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for counterparties.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the counterparties routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/counterparties")
	group.Post("/reconcile", h.HandleReconcile)
	group.Get("/:id", h.HandleGet)
}

// HandleReconcile accepts one vendor counterparty record and runs it through
// the resolution engine. Rejected records come back as 422 with per-field
// errors.
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var record reconcile.IncomingRecord
	if err := c.BodyParser(&record); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body: " + err.Error(),
		})
	}

	result, err := h.service.Reconcile(c.Context(), record)
	if err != nil {
		if errors.Is(err, reconcile.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Counterparty reconciliation failed",
			zap.String("external_id", record.ExternalID),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if result.State == reconcile.StateRejected {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
	}

	status := fiber.StatusOK
	if result.Operation == reconcile.OpCreate {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(result)
}

// HandleGet returns one counterparty by internal id.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	entity, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, reconcile.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Counterparty lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(entity)
}
