// Package canbus writes actuator setpoints to a SocketCAN interface, one
// frame per actuator channel.
package canbus

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"net"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"

	"github.com/open-rover/controller/pkg/kinematics"
	customlog "github.com/open-rover/controller/pkg/log"
)

// Frame ID layout: drive wheels occupy a contiguous block starting at
// driveFrameIDBase in wheel enum order, steering corners likewise at
// steeringFrameIDBase.
const (
	driveFrameIDBase    uint32 = 0x220
	steeringFrameIDBase uint32 = 0x230
)

// Scaling factors for the int16 payloads.
const (
	driveSpeedScale    = 0.01   // drive setpoint units per count
	steeringAngleScale = 0.0001 // radians per count
)

// encodeDriveFrame packs a signed drive setpoint into a 2-byte frame.
func encodeDriveFrame(w kinematics.Wheel, value float64) can.Frame {
	frame := can.Frame{
		ID:     driveFrameIDBase + uint32(w),
		Length: 2,
	}
	binary.LittleEndian.PutUint16(frame.Data[0:2], uint16(int16(math.Round(value/driveSpeedScale))))
	return frame
}

// encodeSteeringFrame packs a signed steering angle into a 2-byte frame.
func encodeSteeringFrame(c kinematics.Corner, value float64) can.Frame {
	frame := can.Frame{
		ID:     steeringFrameIDBase + uint32(c),
		Length: 2,
	}
	binary.LittleEndian.PutUint16(frame.Data[0:2], uint16(int16(math.Round(value/steeringAngleScale))))
	return frame
}

// Output writes actuator setpoints as CAN frames over a SocketCAN
// interface. It satisfies the motion controller's actuator output.
type Output struct {
	conn   net.Conn
	tx     *socketcan.Transmitter
	logger customlog.Logger
}

// NewOutput dials the given SocketCAN interface (e.g. "can0", "vcan0").
func NewOutput(ctx context.Context, iface string, logger customlog.Logger) (*Output, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", iface, err)
	}

	logger.Infof("CAN output ready on %s", iface)

	return &Output{
		conn:   conn,
		tx:     socketcan.NewTransmitter(conn),
		logger: logger,
	}, nil
}

// WriteWheel transmits a drive setpoint frame for the given wheel.
func (o *Output) WriteWheel(w kinematics.Wheel, value float64) error {
	if err := o.tx.TransmitFrame(context.Background(), encodeDriveFrame(w, value)); err != nil {
		return fmt.Errorf("transmit drive frame for %s: %w", w, err)
	}
	return nil
}

// WriteCorner transmits a steering setpoint frame for the given corner.
func (o *Output) WriteCorner(c kinematics.Corner, value float64) error {
	if err := o.tx.TransmitFrame(context.Background(), encodeSteeringFrame(c, value)); err != nil {
		return fmt.Errorf("transmit steering frame for %s: %w", c, err)
	}
	return nil
}

// Close releases the CAN socket.
func (o *Output) Close() error {
	if o.conn != nil {
		return o.conn.Close()
	}
	return nil
}
