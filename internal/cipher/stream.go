// Package cipher implements the two stream ciphers used to encrypt
// connections once a session key has been negotiated: a legacy
// RC4-variant for protocol v4 and an AES-256-OFB cipher for protocol
// v6.
package cipher

import "errors"

// ErrKeyTooShort is returned by FromKey when the supplied key is
// shorter than the cipher's minimum key length.
var ErrKeyTooShort = errors.New("cipher: key is too short")

// Stream is a symmetric stream cipher keyed from an opaque random
// buffer. Encryption and decryption are the same XOR-stream operation.
type Stream interface {
	// InitialKey returns the random buffer the cipher was keyed from,
	// so it can be relayed to a peer during the handshake.
	InitialKey() []byte

	// Apply XORs buf with the keystream in place, advancing the
	// stream's internal position.
	Apply(buf []byte)
}
