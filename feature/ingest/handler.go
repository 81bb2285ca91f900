package ingest

import (
	"refdata-manager/core/logger"
	"refdata-manager/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for batch ingestion.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the ingest routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/ingest")
	group.Post("/", h.HandleIngest)
}

// ingestRequest names a vendor file in the configured bucket.
type ingestRequest struct {
	Object string `json:"object"`
	Kind   string `json:"kind"`
	Source string `json:"source"`
	Format string `json:"format"`
}

// HandleIngest runs one vendor batch file through the engine and returns the
// batch summary. Bad records are reported in the summary, not as an HTTP
// error; only an unreadable file or request fails the call.
func (h *Handler) HandleIngest(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req ingestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body: " + err.Error(),
		})
	}
	if req.Object == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "object is required",
		})
	}

	kind := reconcile.Kind(req.Kind)
	if !kind.IsValid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown entity kind: " + req.Kind,
		})
	}
	if req.Source == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "source is required",
		})
	}

	summary, err := h.service.IngestObject(c.Context(), req.Object, kind, req.Source, Format(req.Format))
	if err != nil {
		l.Error("Batch ingestion failed",
			zap.String("object", req.Object),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(summary)
}
