package dispatch

import (
	"net"
	"time"

	"go.uber.org/zap"

	"universe-server/internal/registry"
	"universe-server/internal/wire"
)

// send writes p to sess, logging (but not otherwise handling) a
// failure: a write error means the socket is already gone, and the
// connection will be reaped on the next maintenance sweep.
func send(d *Dispatcher, sess *registry.Session, p *wire.Packet) {
	if err := sess.Conn.Send(p); err != nil && d.Log != nil {
		d.Log.Debug("send failed", zap.Error(err))
	}
}

// nowUnix returns the current Unix timestamp, the same epoch the
// protocol's timestamp variables use.
func nowUnix() int64 { return time.Now().Unix() }

func nowUnixU32() uint32 { return uint32(time.Now().Unix()) }

// splitHost strips the port from a dialed address, as reported by
// net.Addr.String().
func splitHost(addr string) (string, string, error) {
	return net.SplitHostPort(addr)
}
