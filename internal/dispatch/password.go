package dispatch

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"

	"universe-server/internal/wire"
)

// passwordAttempt reads a login password attempt the way its build
// actually sends it: build 4 and earlier send plaintext through a
// String var, build 6 and later send an MD5 digest through a Data var.
// Reading the v6 digest through GetString would run it through the
// Latin-1 codec, corrupting it on any embedded 0x00 byte.
func passwordAttempt(pkt *wire.Packet, build uint32) []byte {
	if build < 6 {
		return []byte(pkt.GetString(wire.VarPassword))
	}
	return pkt.GetData(wire.VarPassword)
}

// checkPassword validates a login password attempt against a stored
// password. Older (build 4) clients send the password as plaintext, so
// it is compared directly; build 6 and later clients instead send the
// MD5 digest of a length-prefixed, byte-reversed copy of the password
// buffer, an obfuscation scheme with no cryptographic purpose beyond
// not sending the plaintext bytes over the wire. An MD5 digest is
// arbitrary binary, not Latin-1 text, so the v6 attempt must arrive as
// a raw Data var (attempt) rather than a String var: routing it through
// GetString/Latin-1 would corrupt any embedded 0x00 byte.
func checkPassword(build uint32, stored string, attempt []byte) bool {
	if build < 6 {
		return stored == string(attempt)
	}
	return bytes.Equal(hashPasswordV6(stored), attempt)
}

func hashPasswordV6(password string) []byte {
	buf := make([]byte, 4+len(password))
	binary.LittleEndian.PutUint32(buf, uint32(len(password)))
	copy(buf[4:], password)
	reverse(buf[4:])

	sum := md5.Sum(buf)
	return sum[:]
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
