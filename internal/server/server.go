// Package server accepts TCP connections, runs each one through the
// RSA/RC4 handshake, and hands the rest of its lifetime to the
// dispatch package. It also runs the maintenance sweep that expires
// dead connections and keeps tab lists and heartbeats flowing.
package server

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"universe-server/internal/cipher"
	"universe-server/internal/config"
	"universe-server/internal/connection"
	"universe-server/internal/dispatch"
	"universe-server/internal/metrics"
	"universe-server/internal/registry"
	"universe-server/internal/rsahandshake"
	"universe-server/internal/wire"

	"golang.org/x/time/rate"
)

// maintenanceInterval matches the cadence the original's busy loop
// drove its heartbeat/tab-update/dead-connection passes at, without
// the spin: a ticker instead of a 1ms sleep loop.
const maintenanceInterval = 250 * time.Millisecond

// perIPBurst/perIPRate bound how many new connections a single address
// can open in a short window, the same kind of abuse guard a public
// universe server needs regardless of what the legacy protocol itself
// enforces.
const (
	perIPRate  = 1
	perIPBurst = 5
)

// eventKind discriminates what a connection worker (or the
// maintenance ticker) is asking the single server task to do.
type eventKind int

const (
	eventPacket eventKind = iota
	eventHandshakeComplete
	eventMaintenanceTick
	eventDisconnect
)

// inboundEvent is what a connection worker hands to the server task
// over the shared inbound channel. Workers never touch the registry
// or the store directly; only the server task's dispatchLoop does,
// making it the sole mutator of cross-connection state.
type inboundEvent struct {
	kind eventKind
	id   registry.ConnID
	sess *registry.Session
	pkt  *wire.Packet
}

// eventQueueSize bounds how many inbound events can be buffered before
// a connection worker's send to the server task blocks. Generous
// enough that one slow dispatch tick doesn't stall every socket.
const eventQueueSize = 1024

// Server owns the listening socket and every connection accepted on
// it. Exactly one goroutine (dispatchLoop, the "server task") ever
// calls into Dispatcher/Registry methods that mutate cross-connection
// state; every connection worker only touches its own socket and
// cipher state directly, then hands packets off over events.
type Server struct {
	Dispatcher *dispatch.Dispatcher
	Registry   *registry.Registry
	Config     config.UniverseConfig
	Metrics    *metrics.Registry
	Log        *zap.Logger

	events chan inboundEvent

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// New builds a Server ready to Run. d.Registry, d.Config, d.Metrics,
// and d.Log are reused directly rather than duplicated onto Server.
func New(d *dispatch.Dispatcher, log *zap.Logger) *Server {
	return &Server{
		Dispatcher: d,
		Registry:   d.Registry,
		Config:     d.Config,
		Metrics:    d.Metrics,
		Log:        log,
		events:     make(chan inboundEvent, eventQueueSize),
		limiters:   make(map[string]*rate.Limiter),
	}
}

// Run listens on Config.BindIP:Config.Port and serves connections
// until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.Config.BindIP, strconv.Itoa(int(s.Config.Port)))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	defer ln.Close()

	if s.Log != nil {
		s.Log.Info("universe server listening", zap.String("addr", addr))
	}

	go s.dispatchLoop(ctx)
	go s.maintenanceLoop(ctx)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if s.Log != nil {
				s.Log.Warn("accept failed", zap.Error(err))
			}
			continue
		}

		if !s.admit(conn) {
			conn.Close()
			continue
		}

		go s.handleConn(ctx, conn)
	}
}

// admit applies the connection cap and per-IP rate limit, the two
// guards that stand between an open port and a resource-exhaustion
// client.
func (s *Server) admit(conn net.Conn) bool {
	if s.Config.MaxConnections > 0 {
		count := 0
		s.Registry.Each(func(registry.ConnID, *registry.Session) { count++ })
		if count >= s.Config.MaxConnections {
			if s.Metrics != nil {
				s.Metrics.ConnectionsRejected.Inc()
			}
			return false
		}
	}

	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		host = conn.RemoteAddr().String()
	}
	if !s.limiterFor(host).Allow() {
		if s.Metrics != nil {
			s.Metrics.ConnectionsRejected.Inc()
		}
		return false
	}

	return true
}

func (s *Server) limiterFor(host string) *rate.Limiter {
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	l, ok := s.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(perIPRate), perIPBurst)
		s.limiters[host] = l
	}
	return l
}

// handleConn drives one connection from handshake through its
// dispatch loop until the socket errors out or the client disconnects.
func (s *Server) handleConn(ctx context.Context, raw net.Conn) {
	defer raw.Close()

	defer func() {
		if r := recover(); r != nil && s.Log != nil {
			s.Log.Error("recovered from panic handling connection", zap.Any("panic", r))
		}
	}()

	sendCipher, err := cipher.NewA4()
	if err != nil {
		if s.Log != nil {
			s.Log.Error("generate send cipher failed", zap.Error(err))
		}
		return
	}
	rsa, err := rsahandshake.New()
	if err != nil {
		if s.Log != nil {
			s.Log.Error("generate handshake keypair failed", zap.Error(err))
		}
		return
	}

	sess := &registry.Session{
		Conn: connection.New(raw, sendCipher),
		RSA:  rsa,
	}
	id := s.Registry.Add(sess)
	if s.Metrics != nil {
		s.Metrics.ActiveConnections.Inc()
	}
	defer func() {
		s.Registry.Remove(id)
		if s.Metrics != nil {
			s.Metrics.ActiveConnections.Dec()
		}
		// Best-effort: if the server is already shutting down, ctx is
		// done and there's no remaining audience for a tab-list refresh.
		s.submit(ctx, inboundEvent{kind: eventDisconnect, sess: sess})
	}()

	for {
		pkt, err := sess.Conn.RecvNextPacket()
		if err != nil {
			sess.Closed.Store(true)
			return
		}

		switch pkt.Opcode {
		case wire.OpPublicKeyRequest:
			if err := s.sendPublicKey(sess); err != nil {
				return
			}
		case wire.OpPublicKeyResponse:
			if err := s.handlePublicKeyResponse(sess, pkt); err != nil {
				if s.Metrics != nil {
					s.Metrics.HandshakeFailures.Inc()
				}
				return
			}
		case wire.OpStreamKeyResponse:
			if err := s.handleStreamKeyResponse(sess, pkt); err != nil {
				if s.Metrics != nil {
					s.Metrics.HandshakeFailures.Inc()
				}
				return
			}
			if !s.submit(ctx, inboundEvent{kind: eventHandshakeComplete, id: id, sess: sess}) {
				return
			}
		default:
			if !s.submit(ctx, inboundEvent{kind: eventPacket, id: id, sess: sess, pkt: pkt}) {
				return
			}
		}
	}
}

// submit hands ev to the server task, returning false if ctx was
// cancelled first so the caller can stop reading from a connection
// that's shutting down anyway.
func (s *Server) submit(ctx context.Context, ev inboundEvent) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// sendPublicKey answers a PublicKeyRequest with this connection's RSA
// public key, step 1 of the handshake.
func (s *Server) sendPublicKey(sess *registry.Session) error {
	key, err := sess.RSA.EncodePublicKey()
	if err != nil {
		return err
	}
	resp := wire.NewPacket(wire.OpPublicKeyResponse)
	resp.AddData(wire.VarEncryptionKey, key)
	return sess.Conn.Send(resp)
}

// handlePublicKeyResponse receives the peer's public key, RSA-encrypts
// this side's outbound stream key under it, and starts encrypting
// outbound traffic: step 2 of the handshake.
func (s *Server) handlePublicKeyResponse(sess *registry.Session, pkt *wire.Packet) error {
	peerKey := pkt.GetData(wire.VarEncryptionKey)
	encrypted, err := rsahandshake.EncryptForPeer(peerKey, sess.Conn.GetSendKey())
	if err != nil {
		return err
	}

	resp := wire.NewPacket(wire.OpStreamKeyResponse)
	resp.AddData(wire.VarEncryptionKey, encrypted)
	if err := sess.Conn.Send(resp); err != nil {
		return err
	}

	sess.Conn.EncryptData(true)
	return nil
}

// handleStreamKeyResponse decrypts the peer's stream key and installs
// it as the recv cipher: the final handshake step, purely local to
// this connection's own cipher state. The server task sends the
// post-handshake attribute push once it sees the resulting
// eventHandshakeComplete.
func (s *Server) handleStreamKeyResponse(sess *registry.Session, pkt *wire.Packet) error {
	encrypted := pkt.GetData(wire.VarEncryptionKey)
	key, err := sess.RSA.Decrypt(encrypted)
	if err != nil {
		return err
	}

	recvCipher, err := cipher.A4FromKey(key)
	if err != nil {
		return err
	}
	sess.Conn.SetRecvKey(recvCipher)
	return nil
}

// dispatchLoop is the single server task: the only goroutine that ever
// calls into Dispatcher/Registry in a way that mutates state shared
// across connections. Every connection worker and the maintenance
// ticker only ever reach it by sending an inboundEvent.
func (s *Server) dispatchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			switch ev.kind {
			case eventHandshakeComplete:
				dispatch.SendAttributes(ctx, s.Dispatcher, ev.sess)
			case eventMaintenanceTick:
				s.Registry.SendHeartbeats()
				s.Registry.SendTabUpdates()
				dispatch.RemoveDeadConnections(s.Dispatcher)
			case eventDisconnect:
				dispatch.AfterDisconnect(s.Dispatcher, ev.sess)
			default:
				s.Dispatcher.Dispatch(ctx, ev.id, ev.sess, ev.pkt)
			}
		}
	}
}

// maintenanceLoop periodically asks the server task to flush
// heartbeats, tab deltas, and reap connections whose read loop has
// already marked them closed.
func (s *Server) maintenanceLoop(ctx context.Context) {
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.submit(ctx, inboundEvent{kind: eventMaintenanceTick})
		}
	}
}
