package api

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/open-rover/controller/pkg/config"
	"github.com/open-rover/controller/pkg/kinematics"
	customlog "github.com/open-rover/controller/pkg/log"
)

// ConfigHandler holds dependencies for configuration API endpoints.
type ConfigHandler struct {
	config *config.Config
	logger customlog.Logger
}

// NewConfigHandler creates a new handler for configuration endpoints.
func NewConfigHandler(cfg *config.Config, logger customlog.Logger) *ConfigHandler {
	if cfg == nil {
		panic("Config cannot be nil in NewConfigHandler")
	}
	if logger == nil {
		panic("Logger cannot be nil in NewConfigHandler")
	}
	return &ConfigHandler{
		config: cfg,
		logger: logger,
	}
}

// RegisterConfigRoutes registers the configuration API endpoints with the Fiber app.
func RegisterConfigRoutes(app *fiber.App, cfg *config.Config, logger customlog.Logger) {
	h := NewConfigHandler(cfg, logger)

	apiGroup := app.Group("/api/v1/config")
	apiGroup.Get("/rover", h.handleGetRoverConfig)
	apiGroup.Get("/rover/channels", h.handleGetChannels)

	logger.Infof("Registered rover configuration API endpoints under /api/v1/config")
}

// handleGetRoverConfig returns the full operational configuration.
func (h *ConfigHandler) handleGetRoverConfig(c *fiber.Ctx) error {
	h.logger.Debugf("Handling GET request for /api/v1/config/rover")
	return c.Status(http.StatusOK).JSON(h.config)
}

// channelInfo describes one actuator channel and its resolved topic.
type channelInfo struct {
	Channel string `json:"channel"`
	Topic   string `json:"topic"`
	Kind    string `json:"kind"`
}

// handleGetChannels lists every actuator channel with its setpoint topic,
// after overrides are applied.
func (h *ConfigHandler) handleGetChannels(c *fiber.Ctx) error {
	channels := make([]channelInfo, 0, kinematics.NumWheels+kinematics.NumCorners)
	for w := kinematics.Wheel(0); w < kinematics.NumWheels; w++ {
		channels = append(channels, channelInfo{
			Channel: h.config.ChannelName(w.ChannelName()),
			Topic:   h.config.SetpointTopic(w.ChannelName()),
			Kind:    "drive",
		})
	}
	for cr := kinematics.Corner(0); cr < kinematics.NumCorners; cr++ {
		channels = append(channels, channelInfo{
			Channel: h.config.ChannelName(cr.ChannelName()),
			Topic:   h.config.SetpointTopic(cr.ChannelName()),
			Kind:    "steering",
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"robot_id": h.config.RobotID,
		"channels": channels,
	})
}
