package zeromq

import (
	"bytes"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/open-rover/controller/domain/motion"
	"github.com/open-rover/controller/pkg/config"
	message "github.com/open-rover/controller/pkg/flatbuffers/open_rover/message"
	"github.com/open-rover/controller/pkg/kinematics"
)

type testLogger struct{}

func (testLogger) Debugf(format string, args ...interface{}) {}
func (testLogger) Infof(format string, args ...interface{})  {}
func (testLogger) Warnf(format string, args ...interface{})  {}
func (testLogger) Errorf(format string, args ...interface{}) {}
func (testLogger) Fatalf(format string, args ...interface{}) {}

func TestDispatcherRoutesByType(t *testing.T) {
	dispatcher := NewMessageDispatcher(testLogger{})

	var got []byte
	dispatcher.RegisterHandler("PING", HandlerFunc(func(data []byte) ([]byte, error) {
		got = data
		return []byte(`{"type":"PONG"}`), nil
	}))

	request := []byte(`{"type":"PING","timestamp":1}`)
	response, err := dispatcher.Dispatch(request)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if string(got) != string(request) {
		t.Errorf("handler received %q, want %q", got, request)
	}
	if string(response) != `{"type":"PONG"}` {
		t.Errorf("unexpected response: %s", response)
	}
}

func TestDispatcherUnknownType(t *testing.T) {
	dispatcher := NewMessageDispatcher(testLogger{})

	_, err := dispatcher.Dispatch([]byte(`{"type":"NOPE"}`))
	if !errors.Is(err, ErrUnknownMessageType) {
		t.Errorf("expected ErrUnknownMessageType, got %v", err)
	}
}

func TestDispatcherInvalidJSON(t *testing.T) {
	dispatcher := NewMessageDispatcher(testLogger{})

	_, err := dispatcher.Dispatch([]byte("not json"))
	if !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestConfigHandler(t *testing.T) {
	cfg := &config.Config{
		Version: "1.0",
		RobotID: "rover-01",
	}
	handler := NewConfigHandler(cfg, testLogger{})

	request, _ := json.Marshal(ZeroMQMessage{Type: MsgTypeConfigRequest, Timestamp: 1})
	responseData, err := handler.HandleMessage(request)
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}

	var response ZeroMQMessage
	if err := json.Unmarshal(responseData, &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Type != MsgTypeConfigResponse {
		t.Errorf("response type = %q, want %q", response.Type, MsgTypeConfigResponse)
	}

	data, ok := response.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("response data is not an object: %T", response.Data)
	}
	if data["robot_id"] != "rover-01" {
		t.Errorf("robot_id = %v, want rover-01", data["robot_id"])
	}
}

func TestConfigHandlerRejectsWrongType(t *testing.T) {
	handler := NewConfigHandler(&config.Config{}, testLogger{})

	request, _ := json.Marshal(ZeroMQMessage{Type: MsgTypeStatusRequest})
	if _, err := handler.HandleMessage(request); err == nil {
		t.Errorf("expected error for mismatched message type")
	}
}

type recordedPublish struct {
	topic       string
	messageType string
	data        interface{}
}

type fakePublisher struct {
	published []recordedPublish
}

func (f *fakePublisher) PublishJSON(topic string, messageType string, data interface{}) error {
	f.published = append(f.published, recordedPublish{topic, messageType, data})
	return nil
}

func setpointTestConfig() *config.Config {
	return &config.Config{
		RobotID: "rover-01",
		Topics: config.TopicsConfig{
			Namespace:     "rover",
			CommandSuffix: "cmd",
		},
	}
}

func TestSetpointOutputTopics(t *testing.T) {
	publisher := &fakePublisher{}
	out, err := NewSetpointOutput(publisher, setpointTestConfig(), testLogger{})
	if err != nil {
		t.Fatalf("NewSetpointOutput failed: %v", err)
	}

	if err := out.WriteWheel(kinematics.WheelRightFront, -10); err != nil {
		t.Fatalf("WriteWheel failed: %v", err)
	}
	if err := out.WriteCorner(kinematics.CornerLeftBack, 0.4); err != nil {
		t.Fatalf("WriteCorner failed: %v", err)
	}

	if len(publisher.published) != 2 {
		t.Fatalf("expected 2 publishes, got %d", len(publisher.published))
	}

	wheel := publisher.published[0]
	if wheel.topic != "rover/corner_rf_wheel_rf/cmd" {
		t.Errorf("wheel topic = %q", wheel.topic)
	}
	if wheel.messageType != MsgTypeActuatorSetpoint {
		t.Errorf("wheel message type = %q", wheel.messageType)
	}
	sp, ok := wheel.data.(Setpoint)
	if !ok {
		t.Fatalf("wheel payload is %T, want Setpoint", wheel.data)
	}
	if sp.Channel != "corner_rf_wheel_rf" || sp.Value != -10 {
		t.Errorf("wheel setpoint = %+v", sp)
	}

	corner := publisher.published[1]
	if corner.topic != "rover/rocker_left_corner_lb/cmd" {
		t.Errorf("corner topic = %q", corner.topic)
	}
}

func TestSetpointOutputHonorsOverrides(t *testing.T) {
	cfg := setpointTestConfig()
	cfg.ChannelOverrides = map[string]string{
		"corner_rf_wheel_rf": "front_right_drive",
	}

	publisher := &fakePublisher{}
	out, err := NewSetpointOutput(publisher, cfg, testLogger{})
	if err != nil {
		t.Fatalf("NewSetpointOutput failed: %v", err)
	}

	if err := out.WriteWheel(kinematics.WheelRightFront, 50); err != nil {
		t.Fatalf("WriteWheel failed: %v", err)
	}

	got := publisher.published[0]
	if got.topic != "rover/front_right_drive/cmd" {
		t.Errorf("override topic = %q, want rover/front_right_drive/cmd", got.topic)
	}
	if sp := got.data.(Setpoint); sp.Channel != "front_right_drive" {
		t.Errorf("override channel = %q, want front_right_drive", sp.Channel)
	}
}

func TestVelocityListenerStopIsIdempotent(t *testing.T) {
	listener := &VelocityListener{logger: testLogger{}}
	listener.running.Store(true)

	// Concurrent stops must neither race on the flag nor close twice.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listener.Stop()
		}()
	}
	wg.Wait()

	if listener.running.Load() {
		t.Errorf("listener still marked running after Stop")
	}

	// A second round after shutdown is a no-op.
	listener.Stop()
}

func TestDecodeVelocityFlatbuffer(t *testing.T) {
	builder := flatbuffers.NewBuilder(64)
	message.TwistStart(builder)
	message.TwistAddLinearX(builder, 1.5)
	message.TwistAddAngularZ(builder, -0.75)
	builder.Finish(message.TwistEnd(builder))

	cmd, err := DecodeVelocity(builder.FinishedBytes())
	if err != nil {
		t.Fatalf("DecodeVelocity failed: %v", err)
	}
	if cmd.LinearX != 1.5 || cmd.AngularZ != -0.75 {
		t.Errorf("decoded command = %+v, want {1.5 -0.75}", cmd)
	}
}

func TestDecodeVelocityJSONFallback(t *testing.T) {
	payload := []byte(`{"linear":{"x":2.0,"y":0,"z":0},"angular":{"x":0,"y":0,"z":-1.5}}`)

	cmd, err := DecodeVelocity(payload)
	if err != nil {
		t.Fatalf("DecodeVelocity failed: %v", err)
	}
	if cmd.LinearX != 2.0 || cmd.AngularZ != -1.5 {
		t.Errorf("decoded command = %+v, want {2 -1.5}", cmd)
	}
}

func TestDecodeVelocityRejectsGarbage(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		[]byte(`{"linear":`),
		{0x01, 0x02},
		// Long enough to pass the length guard but carrying a root offset
		// far outside the buffer; must come back as a decode error, not a
		// panic out of the flatbuffer accessors.
		bytes.Repeat([]byte{0xff}, 8),
		bytes.Repeat([]byte{0xff}, 64),
	}
	for _, payload := range cases {
		cmd, err := DecodeVelocity(payload)
		if err == nil {
			t.Errorf("expected error for payload %q", payload)
		}
		if !errors.Is(err, ErrInvalidMessage) {
			t.Errorf("payload %q: error = %v, want ErrInvalidMessage", payload, err)
		}
		if cmd != (motion.VelocityCommand{}) {
			t.Errorf("payload %q: command = %+v, want zero command", payload, cmd)
		}
	}
}
