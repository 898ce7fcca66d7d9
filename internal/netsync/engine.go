package netsync

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/snapetech/fbplayer/internal/fberrors"
	"github.com/snapetech/fbplayer/internal/logging"
	"github.com/snapetech/fbplayer/internal/timer"
)

func init() {
	timer.Registry.Register("netsync", &Engine{})
}

// pingInterval matches the reference engine's PING_INTERVAL of 1000ms.
const pingInterval = 1000 * time.Millisecond

// readyPingThreshold is the number of pings a slave waits to receive
// before declaring itself ready, matching the hardcoded 10 in
// netsync_start.
const readyPingThreshold = 10

// Engine is both the netsync protocol driver and a timer.Timer
// implementation: Start/Read/Wait pace the display scheduler against
// the negotiated shared clock instead of the system clock.
type Engine struct {
	isMaster bool

	masterConn *net.UDPConn // master: unconnected, bound socket
	slaveConn  *net.UDPConn // slave: connected socket to the master

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// master state
	mu          sync.Mutex
	slaves      []*slaveRec
	numSlaves   int
	readySlaves int
	nextPing    int
	readyCond   *broadcaster
	goTime      timer.Time

	// slave state
	pingCount     int
	pingTimeLocal timer.Time
	pingMaster    timer.Time
	rtt           uint32
	startTime     timer.Time
	startTimeSet  bool
	slaveSeqno    uint8
	slaveCond     *broadcaster
}

type slaveRec struct {
	addr  *net.UDPAddr
	seqno uint8
	rtt   uint32
}

// Open binds as a master ("s=N,p=PORT") or dials as a slave
// ("m=HOST:PORT"), then starts the background protocol goroutine.
func (e *Engine) Open(params string) error {
	p, err := parseParams(params)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.readyCond = newBroadcaster()
	e.slaveCond = newBroadcaster()

	if p.numSlaves > 0 {
		e.isMaster = true
		e.numSlaves = p.numSlaves
		addr := &net.UDPAddr{Port: p.port}
		conn, err := net.ListenUDP("udp", addr)
		if err != nil {
			return fberrors.New("netsync.Open", fberrors.DriverOpenFailed, err)
		}
		setLowDelayToS(conn)
		e.masterConn = conn

		e.wg.Add(1)
		go e.runMaster(ctx)
		return nil
	}

	raddr := &net.UDPAddr{IP: net.ParseIP(p.host), Port: p.port}
	if raddr.IP == nil {
		ips, err := net.LookupIP(p.host)
		if err != nil || len(ips) == 0 {
			return fberrors.New("netsync.Open", fberrors.DriverOpenFailed,
				fmt.Errorf("cannot resolve %q", p.host))
		}
		raddr.IP = ips[0]
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return fberrors.New("netsync.Open", fberrors.DriverOpenFailed, err)
	}
	setLowDelayToS(conn)
	e.slaveConn = conn

	e.wg.Add(1)
	go e.runSlave(ctx)
	return nil
}

// Start blocks until the negotiated shared clock's epoch is known:
// the master waits for every slave to report ready then broadcasts a
// one-second-ahead deadline; the slave waits for ten pings to have
// been exchanged (its readiness signal) then waits for that broadcast.
func (e *Engine) Start() (timer.Time, error) {
	if e.isMaster {
		for {
			// Take the wake channel before checking, so a signal that
			// lands between the check and the wait is not lost.
			wake := e.readyCond.wait()
			e.mu.Lock()
			ready, want := e.readySlaves, e.numSlaves
			e.mu.Unlock()
			if ready >= want {
				return e.broadcastGo(), nil
			}
			<-wake
		}
	}

	for {
		wake := e.slaveCond.wait()
		e.mu.Lock()
		ready := e.pingCount >= readyPingThreshold
		e.mu.Unlock()
		if ready {
			break
		}
		<-wake
	}
	e.slaveConn.Write(Pack(Msg{Type: MsgReady}))

	for {
		wake := e.slaveCond.wait()
		e.mu.Lock()
		set := e.startTimeSet
		t := e.startTime
		e.mu.Unlock()
		if set {
			return t, nil
		}
		<-wake
	}
}

// Read returns the engine's best estimate of the shared clock: the raw
// wall clock for a master, or the wall clock transformed through the
// most recent ping's local/master/rtt triple for a slave.
func (e *Engine) Read() (timer.Time, error) {
	now := systemNow()
	if e.isMaster {
		return now, nil
	}

	e.mu.Lock()
	local, master, rtt := e.pingTimeLocal, e.pingMaster, e.rtt
	e.mu.Unlock()

	return master.AddNS(now.Sub(local) + int64(rtt)/2), nil
}

// Wait blocks until deadline on the shared clock is reached, converting
// it back into the local clock domain first when running as a slave.
func (e *Engine) Wait(ctx context.Context, deadline timer.Time) error {
	local := deadline
	if !e.isMaster {
		e.mu.Lock()
		pl, pm, rtt := e.pingTimeLocal, e.pingMaster, e.rtt
		e.mu.Unlock()
		local = pl.AddNS(deadline.Sub(pm) + int64(rtt)/2)
	}

	now := systemNow()
	d := time.Duration(local.Sub(now))
	if d <= 0 {
		return nil
	}
	tm := time.NewTimer(d)
	defer tm.Stop()
	select {
	case <-tm.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RTTs returns the most recently measured round-trip time(s) in
// nanoseconds, keyed by peer: every registered slave's address for a
// master, or "master" for a slave's own estimate. Used by the metrics
// layer; harmless to call before any PING/PONG has completed, in which
// case the value is the zero-valued initial estimate.
func (e *Engine) RTTs() map[string]uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isMaster {
		out := make(map[string]uint32, len(e.slaves))
		for _, s := range e.slaves {
			out[s.addr.String()] = s.rtt
		}
		return out
	}
	return map[string]uint32{"master": e.rtt}
}

func (e *Engine) Close() error {
	if e.cancel != nil {
		e.cancel()
	}
	if e.masterConn != nil {
		e.masterConn.Close()
	}
	if e.slaveConn != nil {
		e.slaveConn.Close()
	}
	e.wg.Wait()
	return nil
}

func systemNow() timer.Time {
	now := time.Now()
	return timer.Time{Sec: now.Unix(), Nsec: int64(now.Nanosecond())}
}

func logProtocolError(peer string, err error) {
	logging.RateLimited("netsync.proto."+peer, "netsync: %v", err)
}
