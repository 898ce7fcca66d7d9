package netsync

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/snapetech/fbplayer/internal/fberrors"
	"github.com/snapetech/fbplayer/internal/logging"
	"golang.org/x/net/ipv4"
)

// params grammar mirrors netsync_open's arg parsing: "s=N,p=PORT" binds
// a master listening for N slaves, "m=HOST:PORT" connects as a slave to
// a running master.
type openParams struct {
	numSlaves int
	host      string
	port      int
}

func parseParams(arg string) (openParams, error) {
	var p openParams
	for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ';' || r == ' ' }) {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			return p, fberrors.New("netsync.parseParams", fberrors.UsageError,
				fmt.Errorf("malformed field %q", field))
		}
		switch kv[0] {
		case "s":
			n, err := strconv.Atoi(kv[1])
			if err != nil {
				return p, fberrors.New("netsync.parseParams", fberrors.UsageError, err)
			}
			p.numSlaves = n
		case "p":
			n, err := strconv.Atoi(kv[1])
			if err != nil {
				return p, fberrors.New("netsync.parseParams", fberrors.UsageError, err)
			}
			p.port = n
		case "m":
			host, portStr, err := net.SplitHostPort(kv[1])
			if err != nil {
				return p, fberrors.New("netsync.parseParams", fberrors.UsageError, err)
			}
			n, err := strconv.Atoi(portStr)
			if err != nil {
				return p, fberrors.New("netsync.parseParams", fberrors.UsageError, err)
			}
			p.host, p.port = host, n
		default:
			return p, fberrors.New("netsync.parseParams", fberrors.UsageError,
				fmt.Errorf("unknown field %q, want s=slaves p=port | m=host:port", kv[0]))
		}
	}
	if p.port == 0 || (p.numSlaves == 0 && p.host == "") {
		return p, fberrors.New("netsync.parseParams", fberrors.UsageError,
			fmt.Errorf("params: s=slaves p=port | m=host:port"))
	}
	return p, nil
}

// setLowDelayToS makes a best-effort attempt to mark the netsync socket's
// outgoing datagrams low-delay (IPTOS_LOWDELAY) so timing packets are not
// queued behind bulk traffic on a congested link. Failure is logged once
// and otherwise ignored -- the protocol works fine without it, just with
// worse jitter on a loaded network.
func setLowDelayToS(conn *net.UDPConn) {
	const ipTOSLowDelay = 0x10
	pc := ipv4.NewConn(conn)
	if err := pc.SetTOS(ipTOSLowDelay); err != nil {
		logging.RateLimited("netsync.tos", "netsync: could not set IP_TOS on socket: %v", err)
	}
}
