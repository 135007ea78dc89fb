package motion

import (
	"github.com/gofiber/fiber/v2"

	customlog "github.com/open-rover/controller/pkg/log"
)

// Command represents a manual drive command received over HTTP. Only
// linear_x and angular_z are acted on; the remaining axes are accepted so
// that standard teleoperation clients can post full Twist payloads.
type Command struct {
	LinearX  float64 `json:"linear_x"`
	LinearY  float64 `json:"linear_y"`
	LinearZ  float64 `json:"linear_z"`
	AngularX float64 `json:"angular_x"`
	AngularY float64 `json:"angular_y"`
	AngularZ float64 `json:"angular_z"`
	RobotID  string  `json:"robot_id"`
}

// Service exposes the manual-drive and status HTTP surface for the motion
// controller.
type Service struct {
	controller *Controller
	logger     customlog.Logger
}

// NewService creates a new motion service instance.
func NewService(controller *Controller, logger customlog.Logger) *Service {
	return &Service{
		controller: controller,
		logger:     logger,
	}
}

// CommandHandler processes an incoming drive command and feeds it into the
// motion state slot. The command takes effect on the next control tick.
func (s *Service) CommandHandler(c *fiber.Ctx) error {
	var cmd Command
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.logger.Debugf("Drive command via HTTP: linear_x=%.3f angular_z=%.3f", cmd.LinearX, cmd.AngularZ)
	s.controller.UpdateVelocity(VelocityCommand{
		LinearX:  cmd.LinearX,
		AngularZ: cmd.AngularZ,
	})

	return c.JSON(fiber.Map{
		"status":  "command accepted",
		"command": cmd,
	})
}

// StatusHandler returns the controller counters and last emitted setpoints.
func (s *Service) StatusHandler(c *fiber.Ctx) error {
	return c.JSON(s.controller.Status())
}
