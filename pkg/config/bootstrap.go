package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Actuator output backends selectable in the bootstrap config.
const (
	OutputZeroMQ = "zeromq"
	OutputCANBus = "canbus"
)

// BootstrapConfig holds the initial configuration loaded from controller_config.yaml.
type BootstrapConfig struct {
	Logging   LoggingConfig         `yaml:"logging"`
	Server    BootstrapServerConfig `yaml:"server"`
	ZeroMQ    ZeroMQBootstrap       `yaml:"zeromq"`
	Data      DataConfig            `yaml:"data"`
	Actuators ActuatorsBootstrap    `yaml:"actuators"`
}

// LoggingConfig holds logging settings from bootstrap.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogPath string `yaml:"log_path,omitempty"`
}

// BootstrapServerConfig holds bootstrap HTTP server settings.
type BootstrapServerConfig struct {
	HTTPPort int `yaml:"http_port"`
}

// ZeroMQBootstrap holds ZeroMQ settings from bootstrap.
type ZeroMQBootstrap struct {
	RequestBindAddress     string `yaml:"request_bind_address"`
	PublishBindAddress     string `yaml:"publish_bind_address"`
	VelocityConnectAddress string `yaml:"velocity_connect_address"`
	MessageBufferSize      int    `yaml:"message_buffer_size"`
}

// DataConfig holds data directory settings from bootstrap.
type DataConfig struct {
	Directory           string `yaml:"directory"`
	RoverConfigFilename string `yaml:"rover_config_file"`
}

// ActuatorsBootstrap selects the actuator output backend. The default is
// the ZeroMQ setpoint publisher; "canbus" routes setpoints to SocketCAN
// instead and requires can_interface.
type ActuatorsBootstrap struct {
	Output       string `yaml:"output"`
	CANInterface string `yaml:"can_interface,omitempty"`
}

// LoadBootstrapConfig loads the bootstrap configuration from
// controller_config.yaml in the given directory.
func LoadBootstrapConfig(configDir string) (*BootstrapConfig, error) {
	bootstrapConfigPath := filepath.Join(configDir, "controller_config.yaml")

	data, err := os.ReadFile(bootstrapConfigPath)
	if err != nil {
		return nil, fmt.Errorf("error reading bootstrap config file '%s': %w", bootstrapConfigPath, err)
	}

	var bootstrapCfg BootstrapConfig
	if err := yaml.Unmarshal(data, &bootstrapCfg); err != nil {
		return nil, fmt.Errorf("error parsing bootstrap config file '%s': %w", bootstrapConfigPath, err)
	}

	if bootstrapCfg.ZeroMQ.RequestBindAddress == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: zeromq.request_bind_address")
	}
	if bootstrapCfg.ZeroMQ.PublishBindAddress == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: zeromq.publish_bind_address")
	}
	if bootstrapCfg.ZeroMQ.VelocityConnectAddress == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: zeromq.velocity_connect_address")
	}
	if bootstrapCfg.Data.Directory == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: data.directory")
	}
	if bootstrapCfg.Data.RoverConfigFilename == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: data.rover_config_file")
	}

	if bootstrapCfg.Actuators.Output == "" {
		bootstrapCfg.Actuators.Output = OutputZeroMQ
	}
	switch bootstrapCfg.Actuators.Output {
	case OutputZeroMQ:
	case OutputCANBus:
		if bootstrapCfg.Actuators.CANInterface == "" {
			return nil, fmt.Errorf("bootstrap config: actuators.can_interface is required when actuators.output is '%s'", OutputCANBus)
		}
	default:
		return nil, fmt.Errorf("bootstrap config: unknown actuators.output '%s'", bootstrapCfg.Actuators.Output)
	}

	return &bootstrapCfg, nil
}
