package zeromq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/open-rover/controller/domain/motion"
	"github.com/open-rover/controller/pkg/config"
	customlog "github.com/open-rover/controller/pkg/log"
)

// ConfigHandler handles CONFIG_REQUEST messages
type ConfigHandler struct {
	config *config.Config
	logger customlog.Logger
}

// NewConfigHandler creates a new handler for configuration requests
func NewConfigHandler(cfg *config.Config, logger customlog.Logger) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
		logger: logger,
	}
}

// HandleMessage processes a CONFIG_REQUEST message and returns a CONFIG_RESPONSE
func (h *ConfigHandler) HandleMessage(data []byte) ([]byte, error) {
	var msg ZeroMQMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	if msg.Type != MsgTypeConfigRequest {
		return nil, fmt.Errorf("unexpected message type: %s", msg.Type)
	}

	h.logger.Infof("Processing configuration request")

	response := ZeroMQMessage{
		Type:      MsgTypeConfigResponse,
		Timestamp: float64(time.Now().Unix()),
		Data:      h.config,
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		h.logger.Errorf("Error serializing response: %v", err)
		return nil, fmt.Errorf("failed to serialize response: %w", err)
	}

	h.logger.Debugf("Sending configuration response (%d bytes)", len(responseData))
	return responseData, nil
}

// StatusHandler handles STATUS_REQUEST messages with a snapshot of the
// motion controller counters.
type StatusHandler struct {
	controller *motion.Controller
	logger     customlog.Logger
}

// NewStatusHandler creates a new handler for status requests
func NewStatusHandler(controller *motion.Controller, logger customlog.Logger) *StatusHandler {
	return &StatusHandler{
		controller: controller,
		logger:     logger,
	}
}

// HandleMessage processes a STATUS_REQUEST message and returns a STATUS_RESPONSE
func (h *StatusHandler) HandleMessage(data []byte) ([]byte, error) {
	var msg ZeroMQMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	if msg.Type != MsgTypeStatusRequest {
		return nil, fmt.Errorf("unexpected message type: %s", msg.Type)
	}

	response := ZeroMQMessage{
		Type:      MsgTypeStatusResponse,
		Timestamp: float64(time.Now().Unix()),
		Data:      h.controller.Status(),
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize response: %w", err)
	}

	return responseData, nil
}

// RegisterHandlers wires the request handlers into the service.
func RegisterHandlers(service *ZeroMQService, cfg *config.Config, controller *motion.Controller, logger customlog.Logger) {
	service.RegisterHandler(MsgTypeConfigRequest, NewConfigHandler(cfg, logger))
	service.RegisterHandler(MsgTypeStatusRequest, NewStatusHandler(controller, logger))

	logger.Infof("Registered configuration and status handlers")
}
