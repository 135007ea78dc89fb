package zeromq

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	zmq "github.com/pebbe/zmq4"

	"github.com/open-rover/controller/domain/motion"
	message "github.com/open-rover/controller/pkg/flatbuffers/open_rover/message"
	customlog "github.com/open-rover/controller/pkg/log"
)

// twistJSON is the JSON fallback encoding for velocity commands, matching
// the shape teleoperation bridges emit when flatbuffers are unavailable.
type twistJSON struct {
	Linear struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	} `json:"linear"`
	Angular struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	} `json:"angular"`
}

// VelocityListener subscribes to the velocity command stream and feeds
// decoded commands into the motion controller.
type VelocityListener struct {
	socket     *zmq.Socket
	controller *motion.Controller
	topic      string
	logger     customlog.Logger
	running    atomic.Bool
}

// NewVelocityListener creates a SUB listener for the given velocity topic.
func NewVelocityListener(controller *motion.Controller, topic string, logger customlog.Logger) (*VelocityListener, error) {
	socket, err := zmq.NewSocket(zmq.SUB)
	if err != nil {
		return nil, fmt.Errorf("failed to create SUB socket: %w", err)
	}

	if err := socket.SetSubscribe(topic); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	return &VelocityListener{
		socket:     socket,
		controller: controller,
		topic:      topic,
		logger:     logger,
	}, nil
}

// Start connects to the upstream publisher and begins the receive loop.
func (l *VelocityListener) Start(address string) error {
	if err := l.socket.Connect(address); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	l.running.Store(true)
	go l.receiveLoop()

	l.logger.Infof("Velocity listener started on %s (topic: %s)", address, l.topic)
	return nil
}

// Stop stops the velocity listener. The flag is cleared before the socket
// closes so the receive goroutine sees the shutdown rather than a socket
// error.
func (l *VelocityListener) Stop() {
	if !l.running.Swap(false) {
		return
	}
	if l.socket != nil {
		l.socket.Close()
	}
}

// receiveLoop continuously receives and applies velocity commands
func (l *VelocityListener) receiveLoop() {
	for l.running.Load() {
		frames, err := l.socket.RecvMessageBytes(0)
		if err != nil {
			if l.running.Load() {
				l.logger.Errorf("Error receiving velocity message: %v", err)
				time.Sleep(100 * time.Millisecond)
			}
			continue
		}

		// Topic frame plus payload; a single frame is bare payload.
		payload := frames[len(frames)-1]

		cmd, err := DecodeVelocity(payload)
		if err != nil {
			l.logger.Warnf("Discarding malformed velocity message (%d bytes): %v", len(payload), err)
			continue
		}

		l.logger.Debugf("Velocity command: linear_x=%.3f angular_z=%.3f", cmd.LinearX, cmd.AngularZ)
		l.controller.UpdateVelocity(cmd)
	}
}

// DecodeVelocity parses a velocity payload. Flatbuffer Twist is the primary
// wire format; JSON twist objects are accepted as a fallback.
func DecodeVelocity(payload []byte) (motion.VelocityCommand, error) {
	if len(payload) == 0 {
		return motion.VelocityCommand{}, fmt.Errorf("%w: empty payload", ErrInvalidMessage)
	}

	if payload[0] == '{' {
		var twist twistJSON
		if err := json.Unmarshal(payload, &twist); err != nil {
			return motion.VelocityCommand{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		return motion.VelocityCommand{
			LinearX:  twist.Linear.X,
			AngularZ: twist.Angular.Z,
		}, nil
	}

	// Flatbuffer root offsets are at least 4 bytes
	if len(payload) < 8 {
		return motion.VelocityCommand{}, fmt.Errorf("%w: payload too short for flatbuffer", ErrInvalidMessage)
	}

	return decodeTwistFlatbuffer(payload)
}

// decodeTwistFlatbuffer reads the Twist table out of a flatbuffer payload.
// The generated accessors index the buffer with unchecked offsets, so a
// corrupt payload can make them panic; the recover turns that into a
// decode error instead of killing the receive loop.
func decodeTwistFlatbuffer(payload []byte) (cmd motion.VelocityCommand, err error) {
	defer func() {
		if r := recover(); r != nil {
			cmd = motion.VelocityCommand{}
			err = fmt.Errorf("%w: corrupt flatbuffer payload: %v", ErrInvalidMessage, r)
		}
	}()

	twist := message.GetRootAsTwist(payload, 0)
	return motion.VelocityCommand{
		LinearX:  twist.LinearX(),
		AngularZ: twist.AngularZ(),
	}, nil
}
