package motion

import (
	"fmt"
	"sync"
	"time"

	"github.com/open-rover/controller/pkg/kinematics"
	customlog "github.com/open-rover/controller/pkg/log"
)

// ActuatorOutput is the outbound side of the controller: one named numeric
// channel per physical actuator. Writes are fire and forget; a failed write
// is reported to the caller but must never stop the control loop.
type ActuatorOutput interface {
	WriteWheel(w kinematics.Wheel, value float64) error
	WriteCorner(c kinematics.Corner, value float64) error
}

// Status is a snapshot of the controller counters and last emitted
// setpoints, served over the diagnostics surface.
type Status struct {
	RateHz       int                           `json:"rate_hz"`
	Ticks        uint64                        `json:"ticks"`
	WriteErrors  uint64                        `json:"write_errors"`
	LastCommand  VelocityCommand               `json:"last_command"`
	LastDrive    kinematics.DriveCommandSet    `json:"last_drive"`
	LastSteering kinematics.SteeringCommandSet `json:"last_steering"`
}

// Controller owns the motion state slot and the fixed-rate control loop.
// Every tick it re-applies the most recent velocity command, so actuators
// receive a fresh setpoint at a bounded interval even when the upstream
// command source goes quiet.
type Controller struct {
	limits kinematics.KinematicLimits
	rateHz int
	period time.Duration
	state  *MotionState
	output ActuatorOutput
	logger customlog.Logger

	mu           sync.Mutex
	running      bool
	stopCh       chan struct{}
	wg           sync.WaitGroup
	ticks        uint64
	writeErrors  uint64
	lastCmd      VelocityCommand
	lastDrive    kinematics.DriveCommandSet
	lastSteering kinematics.SteeringCommandSet
}

// NewController creates a motion controller and immediately issues one
// neutral tick (speed 0, turn 0) so the actuators are in a known-safe
// state before any external command arrives.
func NewController(
	limits kinematics.KinematicLimits,
	rateHz int,
	output ActuatorOutput,
	logger customlog.Logger,
) (*Controller, error) {
	if err := limits.Validate(); err != nil {
		return nil, fmt.Errorf("invalid kinematic limits: %w", err)
	}
	if rateHz <= 0 {
		return nil, fmt.Errorf("control rate must be positive, got %d", rateHz)
	}
	if output == nil {
		return nil, fmt.Errorf("actuator output must not be nil")
	}

	c := &Controller{
		limits: limits,
		rateHz: rateHz,
		period: time.Second / time.Duration(rateHz),
		state:  NewMotionState(),
		output: output,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	c.tick(VelocityCommand{})
	return c, nil
}

// UpdateVelocity replaces the current velocity command. Called by the
// transport side, concurrently with the control loop.
func (c *Controller) UpdateVelocity(cmd VelocityCommand) {
	c.state.Update(cmd)
}

// Start launches the control loop goroutine.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	c.logger.Infof("Motion controller started (rate: %d Hz)", c.rateHz)

	c.wg.Add(1)
	go c.run()
}

func (c *Controller) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.period)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			// Actuators keep whatever setpoints were sent last; no stop
			// command is issued on the way out.
			c.logger.Infof("Motion controller loop exiting")
			return
		case <-ticker.C:
			c.tick(c.state.Current())
		}
	}
}

// Stop halts the control loop and waits for the in-flight tick to finish.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.mu.Unlock()

	close(c.stopCh)
	c.wg.Wait()
	c.logger.Infof("Motion controller stopped after %d ticks", c.Status().Ticks)
}

// tick maps the command into actuator setpoints and writes them all, drive
// wheels first, then steering corners. Write failures are counted and
// logged but never abort the tick.
func (c *Controller) tick(cmd VelocityCommand) {
	speed := cmd.LinearX * c.limits.SpeedScaleFactor
	drive, err := kinematics.MapDriveSpeed(speed)
	steering := kinematics.MapSteeringAngle(cmd.AngularZ, c.limits)

	writeDrive := err == nil
	if err != nil {
		// Reverse is unsupported: the drive wheels keep their previous
		// setpoints this tick. Steering is still applied.
		c.logger.Debugf("Drive command skipped: %v (linear_x=%.3f)", err, cmd.LinearX)
	}

	var writeErrs uint64
	if writeDrive {
		for w := kinematics.Wheel(0); w < kinematics.NumWheels; w++ {
			if werr := c.output.WriteWheel(w, drive[w]); werr != nil {
				writeErrs++
				c.logger.Errorf("Wheel %s write failed: %v", w, werr)
			}
		}
	}
	for corner := kinematics.Corner(0); corner < kinematics.NumCorners; corner++ {
		if werr := c.output.WriteCorner(corner, steering[corner]); werr != nil {
			writeErrs++
			c.logger.Errorf("Corner %s write failed: %v", corner, werr)
		}
	}

	c.mu.Lock()
	c.ticks++
	c.writeErrors += writeErrs
	c.lastCmd = cmd
	if writeDrive {
		c.lastDrive = drive
	}
	c.lastSteering = steering
	c.mu.Unlock()
}

// Status returns a snapshot of the controller counters.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		RateHz:       c.rateHz,
		Ticks:        c.ticks,
		WriteErrors:  c.writeErrors,
		LastCommand:  c.lastCmd,
		LastDrive:    c.lastDrive,
		LastSteering: c.lastSteering,
	}
}
