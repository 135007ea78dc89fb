// Package kinematics translates velocity intents into per-actuator setpoints
// for a six-wheeled rocker-bogie chassis with four steerable corners.
package kinematics

import (
	"errors"
	"math"
)

// ErrReverseUnsupported is returned by MapDriveSpeed for negative speeds.
// Backward motion is not implemented; callers are expected to skip the
// drive writes for that tick rather than treat this as a fault.
var ErrReverseUnsupported = errors.New("reverse motion is not supported")

// Wheel identifies one of the six drive wheels. The numeric order is the
// fixed emission order of the drive command set.
type Wheel int

const (
	WheelRightFront Wheel = iota
	WheelRightMid
	WheelRightBack
	WheelLeftFront
	WheelLeftMid
	WheelLeftBack

	NumWheels = 6
)

// Corner identifies one of the four steerable corner joints. The numeric
// order is the fixed emission order of the steering command set.
type Corner int

const (
	CornerRightFront Corner = iota
	CornerRightBack
	CornerLeftFront
	CornerLeftBack

	NumCorners = 4
)

// wheelChannels maps each wheel to its logical actuator channel name.
var wheelChannels = [NumWheels]string{
	WheelRightFront: "corner_rf_wheel_rf",
	WheelRightMid:   "bogie_right_wheel_rm",
	WheelRightBack:  "corner_rb_wheel_rb",
	WheelLeftFront:  "corner_lf_wheel_lf",
	WheelLeftMid:    "bogie_left_wheel_lm",
	WheelLeftBack:   "corner_lb_wheel_lb",
}

// cornerChannels maps each corner joint to its logical actuator channel name.
var cornerChannels = [NumCorners]string{
	CornerRightFront: "bogie_right_corner_rf",
	CornerRightBack:  "rocker_right_corner_rb",
	CornerLeftFront:  "bogie_left_corner_lf",
	CornerLeftBack:   "rocker_left_corner_lb",
}

// ChannelName returns the logical actuator channel name for the wheel.
func (w Wheel) ChannelName() string { return wheelChannels[w] }

// ChannelName returns the logical actuator channel name for the corner.
func (c Corner) ChannelName() string { return cornerChannels[c] }

func (w Wheel) String() string  { return wheelChannels[w] }
func (c Corner) String() string { return cornerChannels[c] }

// DriveCommandSet holds one signed drive-speed setpoint per wheel, indexed
// by Wheel. Each value is within [-DriveSpeedMax, DriveSpeedMax].
type DriveCommandSet [NumWheels]float64

// SteeringCommandSet holds one signed steering angle in radians per corner
// joint, indexed by Corner.
type SteeringCommandSet [NumCorners]float64

// MapDriveSpeed converts a forward drive speed into the six-wheel command
// set. Right-side wheels take the negated speed and left-side wheels the
// positive speed; the motors are mounted mirrored, so opposite signs spin
// all wheels in the same travel direction. Speeds beyond DriveSpeedMax are
// clamped. Negative speeds yield ErrReverseUnsupported and no command.
func MapDriveSpeed(speed float64) (DriveCommandSet, error) {
	if speed < 0 {
		return DriveCommandSet{}, ErrReverseUnsupported
	}
	speed = math.Min(speed, DriveSpeedMax)
	return DriveCommandSet{
		WheelRightFront: -speed,
		WheelRightMid:   -speed,
		WheelRightBack:  -speed,
		WheelLeftFront:  speed,
		WheelLeftMid:    speed,
		WheelLeftBack:   speed,
	}, nil
}

// MapSteeringAngle converts a turn intent into the four-corner steering set.
// Only the sign of the intent matters: any left intent steers by the fixed
// turn angle one way, any right intent by the fixed angle the other way,
// and zero centers all corners. Front and back corners on the same side
// take opposite signs so the wheels splay inward around the turn center.
func MapSteeringAngle(turnIntent float64, limits KinematicLimits) SteeringCommandSet {
	var angle float64
	switch {
	case turnIntent < 0:
		angle = -limits.FixedTurnAngle
	case turnIntent > 0:
		angle = limits.FixedTurnAngle
	}
	return SteeringCommandSet{
		CornerRightFront: -angle,
		CornerRightBack:  angle,
		CornerLeftFront:  -angle,
		CornerLeftBack:   angle,
	}
}
