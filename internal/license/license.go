// Package license builds the fixed-layout license blob served on every
// successful login, RSA-encrypted under an embedded private key.
package license

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"embed"
	"encoding/binary"
	"encoding/pem"
	"fmt"
	"net"
)

//go:embed keys/universe.priv.pem
var keyFS embed.FS

// Data is the fixed-layout license record, field-for-field matching
// AWRegLicData: a flat little-endian struct with no varints or length
// prefixes, so binary.Write over the fields in order reproduces the
// bincode wire shape exactly.
type Data struct {
	LicenseVersion uint32
	IPAddress      [4]byte
	Port           uint32
	LandLimit      uint32
	MaxUsers       uint32
	WorldLimit     uint32
	ExpirationTime int32
	MajorVersion   uint16
	MinorVersion   uint16
	Name           [32]byte
	CanHaveBots    uint32
}

// Default returns the field values create_license_data seeds before
// overriding IP, port, and name: an always-valid, never-expiring,
// bot-capable license.
func Default() Data {
	return Data{
		LicenseVersion: 1,
		IPAddress:      [4]byte{127, 0, 0, 1},
		Port:           6670,
		ExpirationTime: 1<<31 - 1,
		MajorVersion:   5,
		MinorVersion:   1,
		CanHaveBots:    1,
	}
}

// SetIP copies ip's 4-byte form into the record.
func (d *Data) SetIP(ip net.IP) error {
	v4 := ip.To4()
	if v4 == nil {
		return fmt.Errorf("license: %v is not an IPv4 address", ip)
	}
	copy(d.IPAddress[:], v4)
	return nil
}

// SetName copies name into the fixed 32-byte field, truncating if
// name is too long to fit.
func (d *Data) SetName(name string) {
	d.Name = [32]byte{}
	copy(d.Name[:], name)
}

// Encode serializes d as a flat little-endian byte string.
func (d Data) Encode() []byte {
	var buf bytes.Buffer
	// binary.Write never fails against a bytes.Buffer and a
	// fixed-size struct of fixed-width fields.
	_ = binary.Write(&buf, binary.LittleEndian, d)
	return buf.Bytes()
}

// Decode parses a license blob previously produced by Encode.
func Decode(data []byte) (Data, error) {
	var d Data
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &d); err != nil {
		return Data{}, fmt.Errorf("license: decode: %w", err)
	}
	return d, nil
}

// Generator encrypts license blobs under a fixed RSA private key,
// mirroring LicenseGenerator::create_license_data.
type Generator struct {
	key *rsa.PrivateKey
}

// NewGenerator loads the embedded private key and returns a Generator
// ready to encrypt license data for connecting clients.
func NewGenerator() (*Generator, error) {
	key, err := loadKey("keys/universe.priv.pem")
	if err != nil {
		return nil, err
	}
	return &Generator{key: key}, nil
}

// Create builds the license blob for ip/port/name and RSA-encrypts it
// with PKCS#1 v1.5, the same scheme the protocol handshake uses for
// the session key exchange.
func (g *Generator) Create(ip net.IP, port uint16, name string) ([]byte, error) {
	data := Default()
	if err := data.SetIP(ip); err != nil {
		return nil, err
	}
	data.Port = uint32(port)
	data.SetName(name)

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, &g.key.PublicKey, data.Encode())
	if err != nil {
		return nil, fmt.Errorf("license: encrypt: %w", err)
	}
	return ciphertext, nil
}

func loadKey(path string) (*rsa.PrivateKey, error) {
	pemBytes, err := keyFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("license: read embedded key %s: %w", path, err)
	}
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("license: no PEM block found in %s", path)
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("license: parse private key: %w", err)
	}
	return key, nil
}
