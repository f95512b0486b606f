package cipher

import (
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/rand"
)

// aesMinKeyLen is the shortest source key AES will accept; the source
// key is folded down into a 32-byte AES key and a 16-byte IV.
const aesMinKeyLen = 0x20

// AES is the AES-256-OFB cipher used by protocol v6 clients.
type AES struct {
	initial []byte
	stream  stdcipher.Stream
}

// NewAES creates an AES cipher keyed from 256 random bytes.
func NewAES() (*AES, error) {
	src := make([]byte, 256)
	if _, err := rand.Read(src); err != nil {
		return nil, err
	}
	return AESFromKey(src)
}

// AESFromKey derives the AES-256 key and IV from an opaque source key
// of at least 32 bytes. The IV is the source's second 16-byte block;
// the AES key is built by walking the source in reverse and
// accumulating each byte (with wraparound) into a 32-byte buffer.
func AESFromKey(src []byte) (*AES, error) {
	if len(src) < aesMinKeyLen {
		return nil, ErrKeyTooShort
	}

	var key [32]byte
	var iv [16]byte
	copy(iv[:], src[0x10:0x20])

	for i := 0; i < len(src); i++ {
		j := src[len(src)-1-i]
		key[i%len(key)] += j
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	return &AES{
		initial: append([]byte(nil), src...),
		stream:  stdcipher.NewOFB(block, iv[:]),
	}, nil
}

func (a *AES) InitialKey() []byte { return a.initial }

func (a *AES) Apply(buf []byte) { a.stream.XORKeyStream(buf, buf) }
