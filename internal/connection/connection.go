// Package connection implements the per-connection protocol worker:
// buffering raw bytes off the socket, decompressing and deserializing
// packets, and serializing, compressing, and encrypting outbound ones.
package connection

import (
	"errors"
	"net"
	"sync"

	"universe-server/internal/cipher"
	"universe-server/internal/wire"
)

// recvBufSize is the chunk size used for each raw socket read.
const recvBufSize = 0x8000

// Conn wraps a TCP connection with the AW framing: a recv buffer that
// accumulates bytes until a full packet (or compressed envelope) is
// available, and a send path that compresses and optionally encrypts.
type Conn struct {
	conn net.Conn

	mu          sync.Mutex
	sendCipher  cipher.Stream
	recvCipher  cipher.Stream
	shouldEncrypt bool

	recvMu sync.Mutex
	data   []byte
}

// New wraps an already-accepted TCP connection. sendCipher is this
// side's outbound stream cipher, keyed immediately so its initial key
// can be handed to the peer during the RSA handshake.
func New(conn net.Conn, sendCipher cipher.Stream) *Conn {
	return &Conn{conn: conn, sendCipher: sendCipher}
}

func (c *Conn) PeerAddr() net.Addr { return c.conn.RemoteAddr() }

// GetSendKey returns this side's outbound cipher's initial key, to be
// RSA-encrypted and sent to the peer.
func (c *Conn) GetSendKey() []byte { return c.sendCipher.InitialKey() }

// SetRecvKey installs the peer's stream cipher key (already RSA
// decrypted) and retroactively decrypts any data buffered before the
// key arrived.
func (c *Conn) SetRecvKey(recvCipher cipher.Stream) {
	c.recvMu.Lock()
	defer c.recvMu.Unlock()
	recvCipher.Apply(c.data)
	c.recvCipher = recvCipher
}

// EncryptData toggles whether outbound bytes are run through the send
// cipher. The server starts encrypting as soon as it learns the peer's
// public key; the peer does the same once it learns the server's.
func (c *Conn) EncryptData(should bool) {
	c.mu.Lock()
	c.shouldEncrypt = should
	c.mu.Unlock()
}

// Send serializes and compresses a single packet, then writes it to
// the socket, encrypting first if encryption has been turned on.
func (c *Conn) Send(p *wire.Packet) error {
	return c.SendGroup(singleGroup(p))
}

// SendGroup writes every packet in a group as one compressed,
// optionally encrypted transmission.
func (c *Conn) SendGroup(g *wire.PacketGroup) error {
	raw, err := g.Serialize()
	if err != nil {
		return err
	}

	out, err := wire.CompressBytes(raw)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.shouldEncrypt {
		c.sendCipher.Apply(out)
	}
	c.mu.Unlock()

	_, err = c.conn.Write(out)
	return err
}

func singleGroup(p *wire.Packet) *wire.PacketGroup {
	var g wire.PacketGroup
	g.Push(p)
	return &g
}

// Recv reads more bytes off the socket into the recv buffer, decrypting
// them if a recv key has been installed.
func (c *Conn) Recv() (int, error) {
	buf := make([]byte, recvBufSize)
	n, err := c.conn.Read(buf)
	if n > 0 {
		chunk := buf[:n]
		c.recvMu.Lock()
		if c.recvCipher != nil {
			c.recvCipher.Apply(chunk)
		}
		c.data = append(c.data, chunk...)
		c.recvMu.Unlock()
	}
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, errors.New("connection: closed")
	}
	return n, nil
}

func (c *Conn) removeFromBuf(n int) {
	if n > len(c.data) {
		n = len(c.data)
	}
	c.data = append([]byte(nil), c.data[n:]...)
}

func (c *Conn) insertIntoBuf(data []byte) {
	c.data = append(append([]byte(nil), data...), c.data...)
}

func (c *Conn) decompressPacket(serializedLen int) {
	compressed := c.data[:serializedLen]
	decompressed, err := wire.Decompress(compressed)
	if err != nil {
		return
	}
	c.removeFromBuf(serializedLen)
	c.insertIntoBuf(decompressed)
}

// RecvNextPacket returns the next fully-buffered packet, reading more
// bytes off the socket as needed. It returns (nil, nil) only if the
// caller should try again immediately after more data arrives.
func (c *Conn) RecvNextPacket() (*wire.Packet, error) {
	for {
		c.recvMu.Lock()
		hdr, checkErr := wire.DeserializeCheck(c.data)
		c.recvMu.Unlock()

		if checkErr == nil {
			c.recvMu.Lock()
			p, consumed, err := wire.Deserialize(c.data[:hdr.SerializedLength])
			if err == nil {
				c.removeFromBuf(consumed)
			}
			c.recvMu.Unlock()
			if err != nil {
				return nil, err
			}
			return p, nil
		}

		de, ok := checkErr.(*wire.DeserializeError)
		if !ok {
			return nil, checkErr
		}

		switch de.Kind {
		case wire.ErrCompressed:
			c.recvMu.Lock()
			c.decompressPacket(de.CompressedLen)
			c.recvMu.Unlock()
			continue
		case wire.ErrInvalidHeader:
			return nil, checkErr
		case wire.ErrShort:
			if _, err := c.Recv(); err != nil {
				return nil, err
			}
			continue
		}
	}
}

// NeedsAction reports whether there is buffered or socket-pending data
// to act on.
func (c *Conn) NeedsAction() bool {
	c.recvMu.Lock()
	defer c.recvMu.Unlock()
	return len(c.data) > 0
}

func (c *Conn) Close() error { return c.conn.Close() }
