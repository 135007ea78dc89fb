package config

import (
	"fmt"
	"os"

	"github.com/open-rover/controller/pkg/kinematics"
	"gopkg.in/yaml.v3"
)

// Config is the operational rover configuration loaded from rover_config.yaml.
type Config struct {
	Version     string `yaml:"version" json:"version"`
	ConfigID    string `yaml:"config_id" json:"config_id"`
	LastUpdated string `yaml:"lastUpdated" json:"lastUpdated"`
	RobotID     string `yaml:"robot_id" json:"robot_id"`

	Chassis kinematics.KinematicLimits `yaml:"chassis" json:"chassis"`
	Control ControlConfig              `yaml:"control" json:"control"`
	Topics  TopicsConfig               `yaml:"topics" json:"topics"`

	// ChannelOverrides replaces the canonical logical channel name for
	// selected actuators. Keys must be canonical names.
	ChannelOverrides map[string]string `yaml:"channel_overrides,omitempty" json:"channel_overrides,omitempty"`
}

// ControlConfig holds control-loop settings.
type ControlConfig struct {
	// RateHz is the fixed control loop rate. Defaults to 10.
	RateHz int `yaml:"rate_hz" json:"rate_hz"`
}

// TopicsConfig holds the actuator channel addressing scheme. Setpoint
// channels are addressed as <namespace>/<logical-name>/<command-suffix>.
type TopicsConfig struct {
	Namespace     string `yaml:"namespace" json:"namespace"`
	CommandSuffix string `yaml:"command_suffix" json:"command_suffix"`
	VelocityTopic string `yaml:"velocity_topic" json:"velocity_topic"`
}

// Defaults for fields the operational config may omit.
const (
	DefaultRateHz        = 10
	DefaultNamespace     = "rover"
	DefaultCommandSuffix = "cmd"
)

// LoadConfig loads the operational configuration from the given file path,
// applies defaults and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading rover config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing rover config file: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rover config '%s': %w", path, err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Control.RateHz == 0 {
		c.Control.RateHz = DefaultRateHz
	}
	if c.Topics.Namespace == "" {
		c.Topics.Namespace = DefaultNamespace
	}
	if c.Topics.CommandSuffix == "" {
		c.Topics.CommandSuffix = DefaultCommandSuffix
	}
	if c.Topics.VelocityTopic == "" {
		c.Topics.VelocityTopic = c.Topics.Namespace + "/cmd_vel"
	}
	if (c.Chassis == kinematics.KinematicLimits{}) {
		c.Chassis = kinematics.DefaultLimits()
	}
}

// Validate checks the operational configuration once at load time.
func (c *Config) Validate() error {
	if c.RobotID == "" {
		return fmt.Errorf("missing required field: robot_id")
	}
	if err := c.Chassis.Validate(); err != nil {
		return fmt.Errorf("chassis: %w", err)
	}
	if c.Control.RateHz <= 0 {
		return fmt.Errorf("control.rate_hz must be positive, got %d", c.Control.RateHz)
	}
	if c.Topics.Namespace == "" {
		return fmt.Errorf("missing required field: topics.namespace")
	}
	if c.Topics.CommandSuffix == "" {
		return fmt.Errorf("missing required field: topics.command_suffix")
	}

	canonical := make(map[string]bool, kinematics.NumWheels+kinematics.NumCorners)
	for w := kinematics.Wheel(0); w < kinematics.NumWheels; w++ {
		canonical[w.ChannelName()] = true
	}
	for cr := kinematics.Corner(0); cr < kinematics.NumCorners; cr++ {
		canonical[cr.ChannelName()] = true
	}
	seen := make(map[string]string, len(c.ChannelOverrides))
	for name, override := range c.ChannelOverrides {
		if !canonical[name] {
			return fmt.Errorf("channel_overrides: unknown actuator channel '%s'", name)
		}
		if override == "" {
			return fmt.Errorf("channel_overrides: empty override for channel '%s'", name)
		}
		if prev, dup := seen[override]; dup {
			return fmt.Errorf("channel_overrides: '%s' used for both '%s' and '%s'", override, prev, name)
		}
		seen[override] = name
	}

	return nil
}

// ChannelName resolves the logical channel name for an actuator, applying
// any configured override to the canonical name.
func (c *Config) ChannelName(canonical string) string {
	if override, ok := c.ChannelOverrides[canonical]; ok {
		return override
	}
	return canonical
}

// SetpointTopic builds the full setpoint topic for a logical channel name.
func (c *Config) SetpointTopic(canonical string) string {
	return c.Topics.Namespace + "/" + c.ChannelName(canonical) + "/" + c.Topics.CommandSuffix
}
