package canbus

import (
	"encoding/binary"
	"testing"

	"github.com/open-rover/controller/pkg/kinematics"
)

func TestEncodeDriveFrame(t *testing.T) {
	frame := encodeDriveFrame(kinematics.WheelRightFront, -10)

	if frame.ID != 0x220 {
		t.Errorf("frame ID = 0x%X, want 0x220", frame.ID)
	}
	if frame.Length != 2 {
		t.Errorf("frame length = %d, want 2", frame.Length)
	}
	raw := int16(binary.LittleEndian.Uint16(frame.Data[0:2]))
	if raw != -1000 {
		t.Errorf("encoded drive counts = %d, want -1000", raw)
	}
}

func TestEncodeDriveFrameIDsFollowWheelOrder(t *testing.T) {
	for w := kinematics.Wheel(0); w < kinematics.NumWheels; w++ {
		frame := encodeDriveFrame(w, 0)
		want := uint32(0x220) + uint32(w)
		if frame.ID != want {
			t.Errorf("wheel %s frame ID = 0x%X, want 0x%X", w, frame.ID, want)
		}
	}
}

func TestEncodeSteeringFrame(t *testing.T) {
	frame := encodeSteeringFrame(kinematics.CornerLeftBack, 0.4)

	if frame.ID != 0x233 {
		t.Errorf("frame ID = 0x%X, want 0x233", frame.ID)
	}
	raw := int16(binary.LittleEndian.Uint16(frame.Data[0:2]))
	if raw != 4000 {
		t.Errorf("encoded steering counts = %d, want 4000", raw)
	}
}

func TestEncodeSteeringFrameNegativeAngle(t *testing.T) {
	frame := encodeSteeringFrame(kinematics.CornerRightFront, -0.4)

	raw := int16(binary.LittleEndian.Uint16(frame.Data[0:2]))
	if raw != -4000 {
		t.Errorf("encoded steering counts = %d, want -4000", raw)
	}
}
