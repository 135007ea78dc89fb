package zeromq

import (
	"fmt"
	"time"

	"github.com/open-rover/controller/pkg/config"
	"github.com/open-rover/controller/pkg/kinematics"
	customlog "github.com/open-rover/controller/pkg/log"
)

// setpointPublisher is the slice of ZeroMQService the output needs.
type setpointPublisher interface {
	PublishJSON(topic string, messageType string, data interface{}) error
}

// Setpoint is the payload published for each actuator write.
type Setpoint struct {
	Channel     string  `json:"channel"`
	Value       float64 `json:"value"`
	TimestampNs int64   `json:"timestamp_ns"`
}

// SetpointOutput publishes actuator setpoints over the PUB socket, one
// topic per actuator channel. Topics are resolved once at construction so
// the control loop never touches the config.
type SetpointOutput struct {
	publisher    setpointPublisher
	wheelTopics  [kinematics.NumWheels]string
	wheelNames   [kinematics.NumWheels]string
	cornerTopics [kinematics.NumCorners]string
	cornerNames  [kinematics.NumCorners]string
	logger       customlog.Logger
}

// NewSetpointOutput builds the per-actuator topic table from the rover
// configuration.
func NewSetpointOutput(publisher setpointPublisher, cfg *config.Config, logger customlog.Logger) (*SetpointOutput, error) {
	if publisher == nil {
		return nil, fmt.Errorf("publisher must not be nil")
	}

	out := &SetpointOutput{
		publisher: publisher,
		logger:    logger,
	}

	for w := kinematics.Wheel(0); w < kinematics.NumWheels; w++ {
		name := cfg.ChannelName(w.ChannelName())
		out.wheelNames[w] = name
		out.wheelTopics[w] = cfg.SetpointTopic(w.ChannelName())
	}
	for c := kinematics.Corner(0); c < kinematics.NumCorners; c++ {
		name := cfg.ChannelName(c.ChannelName())
		out.cornerNames[c] = name
		out.cornerTopics[c] = cfg.SetpointTopic(c.ChannelName())
	}

	logger.Infof("Setpoint output ready (%d drive, %d steering channels)",
		kinematics.NumWheels, kinematics.NumCorners)
	return out, nil
}

// WriteWheel publishes a drive setpoint for the given wheel.
func (o *SetpointOutput) WriteWheel(w kinematics.Wheel, value float64) error {
	return o.publish(o.wheelTopics[w], o.wheelNames[w], value)
}

// WriteCorner publishes a steering setpoint for the given corner.
func (o *SetpointOutput) WriteCorner(c kinematics.Corner, value float64) error {
	return o.publish(o.cornerTopics[c], o.cornerNames[c], value)
}

func (o *SetpointOutput) publish(topic, channel string, value float64) error {
	sp := Setpoint{
		Channel:     channel,
		Value:       value,
		TimestampNs: time.Now().UnixNano(),
	}
	if err := o.publisher.PublishJSON(topic, MsgTypeActuatorSetpoint, sp); err != nil {
		return fmt.Errorf("failed to publish setpoint on %s: %w", topic, err)
	}
	return nil
}
