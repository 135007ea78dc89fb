package api

import (
	"encoding/json"
	"errors"
	"syscall"

	"github.com/gofiber/contrib/websocket"

	"github.com/open-rover/controller/domain/motion"
	customlog "github.com/open-rover/controller/pkg/log"
)

// ControlWebSocketHandler handles incoming WebSocket messages for manual
// rover driving. Each text frame is expected to be a JSON Twist; the
// linear.x / angular.z pair is fed straight into the motion controller and
// applied on the next control tick.
func ControlWebSocketHandler(conn *websocket.Conn, controller *motion.Controller, logger customlog.Logger) {
	logger.Infof("Control WebSocket connected: %s", conn.RemoteAddr())
	var (
		mt  int
		msg []byte
		err error
	)
	for {
		if mt, msg, err = conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("Control WS read error: %v", err)
			} else {
				// Don't log normal closures as errors
				if err != websocket.ErrCloseSent && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, syscall.ECONNRESET) {
					logger.Infof("Control WS connection closed: %v", err)
				} else {
					logger.Infof("Control WS connection closed normally.")
				}
			}
			break
		}

		if mt != websocket.TextMessage {
			logger.Infof("Ignoring non-text Control WS message type: %d", mt)
			continue
		}

		var twist TwistMsg
		if err := json.Unmarshal(msg, &twist); err != nil {
			logger.Warnf("Failed to unmarshal Twist command from WS: %v. Message: %s", err, string(msg))
			continue
		}

		logger.Debugf("Received Twist command via WS: LinearX=%.2f, AngularZ=%.2f", twist.Linear.X, twist.Angular.Z)

		controller.UpdateVelocity(motion.VelocityCommand{
			LinearX:  twist.Linear.X,
			AngularZ: twist.Angular.Z,
		})
	}
	logger.Infof("Control WebSocket disconnected: %s", conn.RemoteAddr())
}
