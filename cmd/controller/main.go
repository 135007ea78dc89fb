package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/open-rover/controller/domain/motion"
	"github.com/open-rover/controller/pkg/api"
	"github.com/open-rover/controller/pkg/canbus"
	"github.com/open-rover/controller/pkg/config"
	customlog "github.com/open-rover/controller/pkg/log"
	"github.com/open-rover/controller/pkg/zeromq"
)

func main() {
	configDir := os.Getenv("CONFIG_DIR")
	if configDir == "" {
		configDir = "config"
	}

	bootstrapCfg, err := config.LoadBootstrapConfig(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load bootstrap config: %v\n", err)
		os.Exit(1)
	}

	logger, err := customlog.NewLogrusLogger(bootstrapCfg.Logging.Level, bootstrapCfg.Logging.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	roverConfigPath := filepath.Join(bootstrapCfg.Data.Directory, bootstrapCfg.Data.RoverConfigFilename)
	roverCfg, err := config.LoadConfig(roverConfigPath)
	if err != nil {
		logger.Fatalf("Failed to load rover config: %v", err)
	}
	logger.Infof("Loaded rover config for robot '%s' (config ID: %s)", roverCfg.RobotID, roverCfg.ConfigID)

	// ZeroMQ service carries the request/reply surface and, in the default
	// configuration, the actuator setpoint stream.
	zmqService, err := zeromq.NewZeroMQService(bootstrapCfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create ZeroMQ service: %v", err)
	}
	if err := zmqService.Start(); err != nil {
		logger.Fatalf("Failed to start ZeroMQ service: %v", err)
	}

	// Select the actuator output backend
	var (
		output    motion.ActuatorOutput
		canOutput *canbus.Output
	)
	switch bootstrapCfg.Actuators.Output {
	case config.OutputCANBus:
		canOutput, err = canbus.NewOutput(context.Background(), bootstrapCfg.Actuators.CANInterface, logger)
		if err != nil {
			logger.Fatalf("Failed to open CAN interface: %v", err)
		}
		output = canOutput
	default:
		output, err = zeromq.NewSetpointOutput(zmqService, roverCfg, logger)
		if err != nil {
			logger.Fatalf("Failed to create setpoint output: %v", err)
		}
	}

	controller, err := motion.NewController(roverCfg.Chassis, roverCfg.Control.RateHz, output, logger)
	if err != nil {
		logger.Fatalf("Failed to create motion controller: %v", err)
	}
	controller.Start()

	zeromq.RegisterHandlers(zmqService, roverCfg, controller, logger)

	velocityListener, err := zeromq.NewVelocityListener(controller, roverCfg.Topics.VelocityTopic, logger)
	if err != nil {
		logger.Fatalf("Failed to create velocity listener: %v", err)
	}
	if err := velocityListener.Start(bootstrapCfg.ZeroMQ.VelocityConnectAddress); err != nil {
		logger.Fatalf("Failed to start velocity listener: %v", err)
	}

	// Create a new Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Open-Rover Controller",
		ErrorHandler: customErrorHandler,
	})

	// Add middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	motionService := motion.NewService(controller, logger)

	// Set up basic routes
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "online",
			"service":  "open-rover controller",
			"robot_id": roverCfg.RobotID,
		})
	})

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	// Motion routes
	apiGroup := app.Group("/api")
	motionRoutes := apiGroup.Group("/motion")
	motionRoutes.Post("/command", motionService.CommandHandler)
	motionRoutes.Get("/status", motionService.StatusHandler)

	api.RegisterConfigRoutes(app, roverCfg, logger)

	// WebSocket endpoint for manual driving
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/control", websocket.New(func(conn *websocket.Conn) {
		api.ControlWebSocketHandler(conn, controller, logger)
	}))

	port := bootstrapCfg.Server.HTTPPort
	if port == 0 {
		port = 8080
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %d", port)
		if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	// Actuators keep their last setpoints; the loop stops without sending a
	// stop command.
	velocityListener.Stop()
	controller.Stop()
	zmqService.Stop()
	if canOutput != nil {
		if err := canOutput.Close(); err != nil {
			logger.Errorf("Error closing CAN output: %v", err)
		}
	}

	logger.Infof("Controller exited properly")
}

// Custom error handler
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
