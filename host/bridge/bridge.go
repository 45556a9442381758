// Host-side bridge: reads TX20 datagrams from the MCU over serial and
// republishes each wind reading as JSON over MQTT.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"windbridge/host/serial"
	"windbridge/tx20"
)

// packetSize is one datagram plus the CRLF terminator.
const packetSize = tx20.FrameLen + 2

var stopSequence = []byte{'\r', '\n'}

// compassNames maps the 16 vane sectors to point names, 0=N clockwise.
var compassNames = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Reading is the payload published per completed wind sample.
type Reading struct {
	SpeedMPH  float32   `json:"speed_mph"`
	SpeedMS   float32   `json:"speed_ms"`
	Direction uint8     `json:"direction"`
	Compass   string    `json:"compass"`
	Time      time.Time `json:"time"`
}

// Publisher forwards readings downstream.
type Publisher interface {
	Publish(Reading) error
}

// OutOfSyncError reports a packet whose framing was wrong; the bridge
// resynchronises and carries on.
type OutOfSyncError struct {
	Packet []byte
}

func (e *OutOfSyncError) Error() string {
	return fmt.Sprintf("out of sync, packet %v", e.Packet)
}

// Bridge reads datagrams from the MCU and hands decoded readings to a
// Publisher.
type Bridge struct {
	port   serial.Port
	pub    Publisher
	logger *zap.Logger
	buf    [packetSize]byte
}

// New creates a bridge. pub may be nil to log readings without
// publishing them.
func New(port serial.Port, pub Publisher, logger *zap.Logger) *Bridge {
	return &Bridge{port: port, pub: pub, logger: logger}
}

// Run reads packets until ctx is cancelled. Framing and decode errors
// trigger a resync and are logged, not returned; only transport
// failures end the loop.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.sync(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("exiting bridge read loop")
			return ctx.Err()
		default:
		}

		if err := b.handlePacket(); err != nil {
			var oos *OutOfSyncError
			if errors.As(err, &oos) {
				b.logger.Warn("resyncing serial stream",
					zap.Error(err),
					zap.ByteString("packet", oos.Packet))
				if err := b.sync(); err != nil {
					return err
				}
				continue
			}
			return err
		}
	}
}

// handlePacket reads, decodes and publishes one packet.
func (b *Bridge) handlePacket() error {
	if err := b.readPacket(); err != nil {
		return err
	}

	frame, err := tx20.Decode(b.buf[:tx20.FrameLen])
	if err != nil {
		// Framing was intact so the stream is still in sync; the
		// datagram itself was bad. Drop it.
		b.logger.Warn("dropping bad datagram",
			zap.Error(err),
			zap.ByteString("packet", b.buf[:]))
		return nil
	}

	reading := Reading{
		SpeedMPH:  frame.SpeedMPH(),
		SpeedMS:   frame.SpeedMS(),
		Direction: frame.Direction,
		Compass:   compassNames[frame.Direction],
		Time:      time.Now().UTC(),
	}

	b.logger.Info("wind reading",
		zap.Float32("speed_mph", reading.SpeedMPH),
		zap.Float32("speed_ms", reading.SpeedMS),
		zap.Uint8("direction", reading.Direction),
		zap.String("compass", reading.Compass))

	if b.pub != nil {
		if err := b.pub.Publish(reading); err != nil {
			b.logger.Warn("publish failed", zap.Error(err))
		}
	}
	return nil
}

// readPacket fills the packet buffer and validates the terminator.
func (b *Bridge) readPacket() error {
	count := 0
	for count < packetSize {
		n, err := b.port.Read(b.buf[count:])
		if err != nil {
			return fmt.Errorf("serial read: %w", err)
		}
		count += n
	}

	if b.buf[packetSize-2] != stopSequence[0] || b.buf[packetSize-1] != stopSequence[1] {
		packet := make([]byte, packetSize)
		copy(packet, b.buf[:])
		return &OutOfSyncError{Packet: packet}
	}
	return nil
}

// sync skips bytes until the end of the current packet so the next read
// starts on a boundary.
func (b *Bridge) sync() error {
	onebyte := make([]byte, 1)
	for onebyte[0] != stopSequence[len(stopSequence)-1] {
		if _, err := b.port.Read(onebyte); err != nil {
			return fmt.Errorf("serial sync: %w", err)
		}
	}
	return nil
}
