package kinematics

import "fmt"

// KinematicLimits holds the chassis geometry and motion bounds for the
// rocker-bogie platform. Values are set once at startup and never mutated.
type KinematicLimits struct {
	// RobotWidth and RobotLength describe the chassis footprint in meters.
	// They are part of the chassis model even though the current mapper
	// does not use them directly.
	RobotWidth  float64 `yaml:"width_m" json:"width_m"`
	RobotLength float64 `yaml:"length_m" json:"length_m"`

	// MaxTurnAngle is the mechanical steering limit of a corner joint in
	// radians. Emitted steering angles never exceed this magnitude.
	MaxTurnAngle float64 `yaml:"max_turn_angle_rad" json:"max_turn_angle_rad"`

	// SpeedScaleFactor converts the incoming linear velocity into the
	// wheel drive-speed scale expected by the motor controllers.
	SpeedScaleFactor float64 `yaml:"speed_scale_factor" json:"speed_scale_factor"`

	// FixedTurnAngle is the single steering magnitude used for all turns.
	// Steering is three-band (left, straight, right), not proportional.
	FixedTurnAngle float64 `yaml:"fixed_turn_angle_rad" json:"fixed_turn_angle_rad"`
}

// DriveSpeedMax bounds each wheel drive setpoint to [-DriveSpeedMax, DriveSpeedMax].
const DriveSpeedMax = 100.0

// DefaultLimits returns the stock chassis limits.
func DefaultLimits() KinematicLimits {
	return KinematicLimits{
		RobotWidth:       0.45,
		RobotLength:      0.76,
		MaxTurnAngle:     0.78,
		SpeedScaleFactor: 5,
		FixedTurnAngle:   0.4,
	}
}

// Validate checks the limits once at startup. A zero or negative geometry,
// a non-positive scale factor, or a fixed turn angle outside the mechanical
// steering range all reject the configuration.
func (l KinematicLimits) Validate() error {
	if l.RobotWidth <= 0 {
		return fmt.Errorf("chassis width must be positive, got %v", l.RobotWidth)
	}
	if l.RobotLength <= 0 {
		return fmt.Errorf("chassis length must be positive, got %v", l.RobotLength)
	}
	if l.MaxTurnAngle <= 0 {
		return fmt.Errorf("max turn angle must be positive, got %v", l.MaxTurnAngle)
	}
	if l.SpeedScaleFactor <= 0 {
		return fmt.Errorf("speed scale factor must be positive, got %v", l.SpeedScaleFactor)
	}
	if l.FixedTurnAngle <= 0 || l.FixedTurnAngle > l.MaxTurnAngle {
		return fmt.Errorf("fixed turn angle must be in (0, %v], got %v", l.MaxTurnAngle, l.FixedTurnAngle)
	}
	return nil
}
