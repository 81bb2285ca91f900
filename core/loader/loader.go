package loader

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature is a self-contained vertical of the application that can register
// its routes on the shared Fiber app.
type Feature interface {
	// Name returns the unique name of the feature.
	Name() string

	// IsEnabled reports whether the feature should be loaded. Features
	// missing a dependency (e.g., no database connection) disable
	// themselves instead of failing startup.
	IsEnabled() bool

	// Load registers the feature's routes.
	Load(app fiber.Router) error
}

// Manager collects features and loads the enabled ones.
type Manager struct {
	features []Feature
}

// NewManager creates an empty feature manager.
func NewManager() *Manager {
	return &Manager{}
}

// Register adds a feature to the manager.
func (m *Manager) Register(f Feature) {
	m.features = append(m.features, f)
}

// LoadAll loads every enabled feature onto the app, logging skipped ones.
func (m *Manager) LoadAll(app fiber.Router, logger *zap.Logger) error {
	for _, f := range m.features {
		if !f.IsEnabled() {
			logger.Warn("feature disabled", zap.String("feature", f.Name()))
			continue
		}
		if err := f.Load(app); err != nil {
			return fmt.Errorf("failed to load feature %s: %w", f.Name(), err)
		}
		logger.Info("feature loaded", zap.String("feature", f.Name()))
	}
	return nil
}
