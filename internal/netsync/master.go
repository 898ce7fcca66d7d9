package netsync

import (
	"context"
	"net"
	"time"

	"github.com/snapetech/fbplayer/internal/timer"
)

func (e *Engine) runMaster(ctx context.Context) {
	defer e.wg.Done()

	buf := make([]byte, msgSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		e.masterConn.SetReadDeadline(time.Now().Add(pingInterval))
		n, addr, err := e.masterConn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				e.pingNextSlave()
				continue
			}
			if ctx.Err() != nil {
				return
			}
			logProtocolError("master", err)
			continue
		}

		msg, err := Unpack(buf[:n])
		if err != nil {
			logProtocolError("master", err)
			continue
		}
		e.handleMasterMsg(msg, addr, systemNow())
	}
}

func (e *Engine) findOrAddSlave(addr *net.UDPAddr) *slaveRec {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, s := range e.slaves {
		if s.addr.IP.Equal(addr.IP) && s.addr.Port == addr.Port {
			return s
		}
	}
	if len(e.slaves) >= e.numSlaves {
		return nil
	}
	s := &slaveRec{addr: addr}
	e.slaves = append(e.slaves, s)
	return s
}

func (e *Engine) handleMasterMsg(msg Msg, addr *net.UDPAddr, rtime timer.Time) {
	s := e.findOrAddSlave(addr)
	if s == nil {
		return
	}

	switch msg.Type {
	case MsgHello:
		e.sendToSlave(s, Msg{Type: MsgHello})

	case MsgReady:
		e.mu.Lock()
		e.readySlaves++
		e.mu.Unlock()
		e.readyCond.signal()

	case MsgPong:
		e.mu.Lock()
		s.rtt = uint32(rtime.Sub(msg.Time))
		e.mu.Unlock()
	}
}

func (e *Engine) sendToSlave(s *slaveRec, msg Msg) {
	e.mu.Lock()
	msg.Seqno = s.seqno
	s.seqno++
	e.mu.Unlock()
	e.masterConn.WriteToUDP(Pack(msg), s.addr)
}

func (e *Engine) pingNextSlave() {
	e.mu.Lock()
	if len(e.slaves) == 0 {
		e.mu.Unlock()
		return
	}
	if e.nextPing >= len(e.slaves) {
		e.nextPing = 0
	}
	s := e.slaves[e.nextPing]
	e.nextPing++
	rtt := s.rtt
	e.mu.Unlock()

	e.sendToSlave(s, Msg{Type: MsgPing, Time: systemNow(), RTT: rtt})
}

// broadcastGo sends GO to every registered slave and records the
// deadline so Start can return it.
func (e *Engine) broadcastGo() timer.Time {
	goTime := systemNow().AddNS(int64(time.Second))

	e.mu.Lock()
	slaves := append([]*slaveRec(nil), e.slaves...)
	e.goTime = goTime
	e.mu.Unlock()

	for _, s := range slaves {
		e.sendToSlave(s, Msg{Type: MsgGo, Time: goTime})
	}
	return goTime
}
