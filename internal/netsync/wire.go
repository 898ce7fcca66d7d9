// Package netsync implements the UDP master/slave time-synchronization
// protocol multiple playback instances use to align their display
// clocks, ported from netsync.c. Wire layout, message types, and sizes
// are preserved exactly; only the concurrency model changes, POSIX
// threads/mutexes/condvars/semaphores give way to goroutines,
// channels, and context.Context.
package netsync

import (
	"encoding/binary"
	"fmt"

	"github.com/snapetech/fbplayer/internal/fberrors"
	"github.com/snapetech/fbplayer/internal/timer"
)

// MsgType identifies a netsync message's wire type.
type MsgType uint8

const (
	MsgHello MsgType = iota
	MsgReady
	MsgGo
	MsgPing
	MsgPong

	msgTypeLast = MsgPong
)

func (t MsgType) String() string {
	switch t {
	case MsgHello:
		return "hello"
	case MsgReady:
		return "ready"
	case MsgGo:
		return "go"
	case MsgPing:
		return "ping"
	case MsgPong:
		return "pong"
	default:
		return fmt.Sprintf("msgtype(%d)", uint8(t))
	}
}

const protocolVersion = 0

// msgSize is the maximum wire size of any message; packets are always
// sent at their exact type-dependent length (3, 11, or 15 bytes).
const msgSize = 15

// Msg is one netsync protocol message.
type Msg struct {
	Type  MsgType
	Seqno uint8
	Time  timer.Time // present for Go, Ping, Pong
	RTT   uint32     // present for Ping only, nanoseconds
}

// Pack encodes m into its exact wire length: 3 bytes for Hello/Ready,
// 11 for Go/Pong, 15 for Ping.
func Pack(m Msg) []byte {
	buf := make([]byte, msgSize)
	buf[0] = protocolVersion
	buf[1] = byte(m.Type)
	buf[2] = m.Seqno

	n := 3
	if m.Type >= MsgGo {
		binary.BigEndian.PutUint32(buf[3:7], uint32(m.Time.Sec))
		binary.BigEndian.PutUint32(buf[7:11], uint32(m.Time.Nsec))
		n = 11
	}
	if m.Type == MsgPing {
		binary.BigEndian.PutUint32(buf[11:15], m.RTT)
		n = 15
	}
	return buf[:n]
}

// Unpack decodes a received packet. Packets with an unrecognized
// protocol version or message type are rejected.
func Unpack(buf []byte) (Msg, error) {
	if len(buf) < 3 {
		return Msg{}, fberrors.New("netsync.Unpack", fberrors.ProtocolError,
			fmt.Errorf("short packet: %d bytes", len(buf)))
	}
	if buf[0] != protocolVersion {
		return Msg{}, fberrors.New("netsync.Unpack", fberrors.ProtocolError,
			fmt.Errorf("bad protocol version %d", buf[0]))
	}

	m := Msg{Type: MsgType(buf[1]), Seqno: buf[2]}
	if m.Type > msgTypeLast {
		return Msg{}, fberrors.New("netsync.Unpack", fberrors.ProtocolError,
			fmt.Errorf("invalid message type %d", buf[1]))
	}

	if m.Type >= MsgGo {
		if len(buf) < 11 {
			return Msg{}, fberrors.New("netsync.Unpack", fberrors.ProtocolError,
				fmt.Errorf("%s message truncated: %d bytes", m.Type, len(buf)))
		}
		m.Time.Sec = int64(binary.BigEndian.Uint32(buf[3:7]))
		m.Time.Nsec = int64(binary.BigEndian.Uint32(buf[7:11]))
	}
	if m.Type == MsgPing {
		if len(buf) < 15 {
			return Msg{}, fberrors.New("netsync.Unpack", fberrors.ProtocolError,
				fmt.Errorf("ping message truncated: %d bytes", len(buf)))
		}
		m.RTT = binary.BigEndian.Uint32(buf[11:15])
	}
	return m, nil
}
