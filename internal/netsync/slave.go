package netsync

import (
	"context"
	"net"
	"time"

	"github.com/snapetech/fbplayer/internal/timer"
)

func (e *Engine) runSlave(ctx context.Context) {
	defer e.wg.Done()

	e.slaveConn.Write(Pack(Msg{Type: MsgHello}))

	buf := make([]byte, msgSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		e.slaveConn.SetReadDeadline(time.Now().Add(time.Second))
		n, err := e.slaveConn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			logProtocolError("slave", err)
			continue
		}

		msg, err := Unpack(buf[:n])
		if err != nil {
			logProtocolError("slave", err)
			continue
		}
		e.handleSlaveMsg(msg, systemNow())
	}
}

func (e *Engine) handleSlaveMsg(msg Msg, rtime timer.Time) {
	switch msg.Type {
	case MsgGo:
		e.mu.Lock()
		e.startTime = msg.Time
		e.startTimeSet = true
		e.mu.Unlock()
		e.slaveCond.signal()

	case MsgPing:
		e.mu.Lock()
		e.pingTimeLocal = rtime
		e.pingMaster = msg.Time
		e.rtt = msg.RTT
		e.pingCount++
		seqno := e.slaveSeqno
		e.slaveSeqno++
		count := e.pingCount
		e.mu.Unlock()

		e.slaveConn.Write(Pack(Msg{Type: MsgPong, Seqno: seqno, Time: msg.Time}))

		if count >= readyPingThreshold {
			e.slaveCond.signal()
		}
	}
}
