package motion

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/open-rover/controller/pkg/kinematics"
)

type actuatorWrite struct {
	wheel  kinematics.Wheel
	corner kinematics.Corner
	drive  bool
	value  float64
}

// fakeOutput records every actuator write in order.
type fakeOutput struct {
	mu        sync.Mutex
	writes    []actuatorWrite
	wheelErr  error
	cornerErr error
}

func (f *fakeOutput) WriteWheel(w kinematics.Wheel, value float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.wheelErr != nil {
		return f.wheelErr
	}
	f.writes = append(f.writes, actuatorWrite{wheel: w, drive: true, value: value})
	return nil
}

func (f *fakeOutput) WriteCorner(c kinematics.Corner, value float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cornerErr != nil {
		return f.cornerErr
	}
	f.writes = append(f.writes, actuatorWrite{corner: c, value: value})
	return nil
}

func (f *fakeOutput) recorded() []actuatorWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]actuatorWrite, len(f.writes))
	copy(out, f.writes)
	return out
}

func (f *fakeOutput) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = nil
}

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...interface{}) {}
func (nopLogger) Infof(format string, args ...interface{})  {}
func (nopLogger) Warnf(format string, args ...interface{})  {}
func (nopLogger) Errorf(format string, args ...interface{}) {}
func (nopLogger) Fatalf(format string, args ...interface{}) {}

func newTestController(t *testing.T, output ActuatorOutput) *Controller {
	t.Helper()
	c, err := NewController(kinematics.DefaultLimits(), 10, output, nopLogger{})
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	return c
}

func TestNeutralTickOnConstruction(t *testing.T) {
	output := &fakeOutput{}
	newTestController(t, output)

	writes := output.recorded()
	if len(writes) != kinematics.NumWheels+kinematics.NumCorners {
		t.Fatalf("expected %d writes from neutral tick, got %d",
			kinematics.NumWheels+kinematics.NumCorners, len(writes))
	}
	for i, w := range writes {
		if w.value != 0 {
			t.Errorf("write %d: expected neutral setpoint 0, got %v", i, w.value)
		}
	}
	// Drive wheels go out before steering corners, in enum order.
	for i := 0; i < kinematics.NumWheels; i++ {
		if !writes[i].drive || writes[i].wheel != kinematics.Wheel(i) {
			t.Errorf("write %d: expected wheel %d, got %+v", i, i, writes[i])
		}
	}
	for i := 0; i < kinematics.NumCorners; i++ {
		w := writes[kinematics.NumWheels+i]
		if w.drive || w.corner != kinematics.Corner(i) {
			t.Errorf("write %d: expected corner %d, got %+v", kinematics.NumWheels+i, i, w)
		}
	}
}

func TestTickForwardCommand(t *testing.T) {
	output := &fakeOutput{}
	c := newTestController(t, output)
	output.reset()

	c.UpdateVelocity(VelocityCommand{LinearX: 2.0, AngularZ: 0.0})
	c.tick(c.state.Current())

	writes := output.recorded()
	if len(writes) != 10 {
		t.Fatalf("expected 10 writes, got %d", len(writes))
	}
	// linear_x 2.0 at scale factor 5 gives drive speed 10.
	wantDrive := []float64{-10, -10, -10, 10, 10, 10}
	for i := 0; i < 6; i++ {
		if writes[i].value != wantDrive[i] {
			t.Errorf("wheel %d setpoint = %v, want %v", i, writes[i].value, wantDrive[i])
		}
	}
	for i := 6; i < 10; i++ {
		if writes[i].value != 0 {
			t.Errorf("corner %d setpoint = %v, want 0", i-6, writes[i].value)
		}
	}
}

func TestTickTurnInPlace(t *testing.T) {
	output := &fakeOutput{}
	c := newTestController(t, output)
	output.reset()

	c.UpdateVelocity(VelocityCommand{LinearX: 0.0, AngularZ: -1.5})
	c.tick(c.state.Current())

	writes := output.recorded()
	if len(writes) != 10 {
		t.Fatalf("expected 10 writes, got %d", len(writes))
	}
	for i := 0; i < 6; i++ {
		if writes[i].value != 0 {
			t.Errorf("wheel %d setpoint = %v, want 0", i, writes[i].value)
		}
	}
	wantSteering := []float64{0.4, -0.4, 0.4, -0.4}
	for i := 6; i < 10; i++ {
		if writes[i].value != wantSteering[i-6] {
			t.Errorf("corner %d setpoint = %v, want %v", i-6, writes[i].value, wantSteering[i-6])
		}
	}
}

func TestTickReverseSkipsDriveWrites(t *testing.T) {
	output := &fakeOutput{}
	c := newTestController(t, output)
	output.reset()

	c.UpdateVelocity(VelocityCommand{LinearX: -3.0, AngularZ: 0.0})
	c.tick(c.state.Current())

	writes := output.recorded()
	if len(writes) != kinematics.NumCorners {
		t.Fatalf("expected only %d steering writes for reverse command, got %d writes",
			kinematics.NumCorners, len(writes))
	}
	for _, w := range writes {
		if w.drive {
			t.Errorf("unexpected drive write %+v for reverse command", w)
		}
		if w.value != 0 {
			t.Errorf("corner %d setpoint = %v, want 0", w.corner, w.value)
		}
	}
}

func TestTickIdempotent(t *testing.T) {
	output := &fakeOutput{}
	c := newTestController(t, output)

	c.UpdateVelocity(VelocityCommand{LinearX: 1.0, AngularZ: 0.5})

	output.reset()
	c.tick(c.state.Current())
	first := output.recorded()

	output.reset()
	c.tick(c.state.Current())
	second := output.recorded()

	if len(first) != len(second) {
		t.Fatalf("tick write counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("write %d differs between ticks: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestWriteErrorsAreCountedNotFatal(t *testing.T) {
	output := &fakeOutput{wheelErr: errors.New("channel down")}
	c := newTestController(t, output)
	output.reset()

	c.UpdateVelocity(VelocityCommand{LinearX: 1.0, AngularZ: 1.0})
	c.tick(c.state.Current())

	// All six wheel writes failed; the four steering writes still went out.
	writes := output.recorded()
	if len(writes) != kinematics.NumCorners {
		t.Fatalf("expected %d steering writes despite wheel failures, got %d",
			kinematics.NumCorners, len(writes))
	}

	status := c.Status()
	if status.WriteErrors < kinematics.NumWheels {
		t.Errorf("expected at least %d write errors recorded, got %d",
			kinematics.NumWheels, status.WriteErrors)
	}
}

func TestControllerStartStop(t *testing.T) {
	output := &fakeOutput{}
	c, err := NewController(kinematics.DefaultLimits(), 100, output, nopLogger{})
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}

	c.Start()
	c.UpdateVelocity(VelocityCommand{LinearX: 1.0})
	time.Sleep(100 * time.Millisecond)
	c.Stop()

	status := c.Status()
	if status.Ticks < 2 {
		t.Errorf("expected multiple ticks after 100ms at 100 Hz, got %d", status.Ticks)
	}
	if status.LastCommand.LinearX != 1.0 {
		t.Errorf("expected last command linear_x 1.0, got %v", status.LastCommand.LinearX)
	}

	// Stop must not emit a final stop command: the last drive setpoints
	// stay at the values of the last ticked command.
	if status.LastDrive[kinematics.WheelLeftFront] != 5.0 {
		t.Errorf("expected last left-front drive setpoint 5.0, got %v",
			status.LastDrive[kinematics.WheelLeftFront])
	}
}

func TestNewControllerRejectsBadArguments(t *testing.T) {
	output := &fakeOutput{}

	if _, err := NewController(kinematics.KinematicLimits{}, 10, output, nopLogger{}); err == nil {
		t.Errorf("expected error for invalid limits")
	}
	if _, err := NewController(kinematics.DefaultLimits(), 0, output, nopLogger{}); err == nil {
		t.Errorf("expected error for zero rate")
	}
	if _, err := NewController(kinematics.DefaultLimits(), 10, nil, nopLogger{}); err == nil {
		t.Errorf("expected error for nil output")
	}
}

func TestMotionStateNoTornReads(t *testing.T) {
	state := NewMotionState()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= 1000; i++ {
			v := float64(i)
			// Both fields carry the same value, so a torn read is
			// observable as a field mismatch.
			state.Update(VelocityCommand{LinearX: v, AngularZ: v})
		}
	}()

	for {
		select {
		case <-done:
			cmd := state.Current()
			if cmd.LinearX != cmd.AngularZ {
				t.Fatalf("torn read after updates: %+v", cmd)
			}
			return
		default:
			cmd := state.Current()
			if cmd.LinearX != cmd.AngularZ {
				t.Fatalf("torn read: linear_x=%v angular_z=%v", cmd.LinearX, cmd.AngularZ)
			}
		}
	}
}
