package motion

import "sync"

// VelocityCommand is the 2D velocity intent driving the rover: forward
// speed and turn rate. It mirrors the linear.x / angular.z pair of a
// geometry Twist message.
type VelocityCommand struct {
	LinearX  float64 `json:"linear_x"`
	AngularZ float64 `json:"angular_z"`
}

// MotionState holds the most recently received velocity command. The
// transport side overwrites it asynchronously; the control loop reads it
// once per tick. The slot always holds exactly one command, starting with
// the zero command, and a read never observes a half-written update.
type MotionState struct {
	mu  sync.RWMutex
	cmd VelocityCommand
}

// NewMotionState returns a state slot holding the zero command.
func NewMotionState() *MotionState {
	return &MotionState{}
}

// Update unconditionally replaces the stored command. No history is kept
// and no event is emitted; a command that races with a tick is picked up
// on the following tick at the latest.
func (s *MotionState) Update(cmd VelocityCommand) {
	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()
}

// Current returns the latest command.
func (s *MotionState) Current() VelocityCommand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cmd
}
