// Package rsahandshake implements the per-connection RSA key exchange
// that bootstraps a connection's stream cipher. AW versions prior to
// 7.0 use weak RSA, so a fresh 512-bit keypair is generated for every
// connection rather than reused across the server.
package rsahandshake

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"errors"
)

const keyBits = 512

// Handshake holds the per-connection RSA keypair used to bootstrap
// encryption. The sequence is:
//
//  1. Client sends PublicKeyRequest. Server replies with its public
//     key (EncodePublicKey).
//  2. Client sends PublicKeyResponse containing its own public key.
//     Server encrypts its stream cipher's initial key under the
//     client's key (EncryptForPeer) and sends it back as
//     StreamKeyResponse, then starts encrypting outbound traffic.
//  3. Client sends StreamKeyResponse containing its stream cipher's
//     initial key, encrypted under the server's public key. Server
//     decrypts it (Decrypt) and starts decrypting inbound traffic.
type Handshake struct {
	priv *rsa.PrivateKey
}

// New generates a fresh 512-bit RSA keypair for one connection.
func New() (*Handshake, error) {
	priv, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, err
	}
	return &Handshake{priv: priv}, nil
}

// EncodePublicKey returns this handshake's public key in a form
// suitable for sending in a PublicKeyResponse packet.
func (h *Handshake) EncodePublicKey() ([]byte, error) {
	return x509.MarshalPKIXPublicKey(&h.priv.PublicKey)
}

// EncryptForPeer encodes peerPublicKey (as received in a
// PublicKeyResponse packet) and encrypts plaintext under it, for
// sending back as a StreamKeyResponse payload.
func EncryptForPeer(peerPublicKeyDER, plaintext []byte) ([]byte, error) {
	pub, err := decodePublicKey(peerPublicKeyDER)
	if err != nil {
		return nil, err
	}
	return rsa.EncryptPKCS1v15(rand.Reader, pub, plaintext)
}

// Decrypt decrypts data that was encrypted under this handshake's
// public key, as received in a StreamKeyResponse payload.
func (h *Handshake) Decrypt(ciphertext []byte) ([]byte, error) {
	return rsa.DecryptPKCS1v15(rand.Reader, h.priv, ciphertext)
}

func decodePublicKey(der []byte) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, err
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("rsahandshake: not an RSA public key")
	}
	return pub, nil
}
