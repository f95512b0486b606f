package wire

// latin1Encode converts a Go string to its Latin-1 (ISO-8859-1) byte
// representation. Runes outside 0..255 are replaced with '?', matching the
// legacy protocol's lossy handling of non-Latin-1 text.
func latin1Encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			out = append(out, '?')
			continue
		}
		out = append(out, byte(r))
	}
	return out
}

// latin1Decode converts Latin-1 bytes to a Go string. Latin-1 maps
// byte-for-byte onto the first 256 Unicode code points, so this never
// fails and never loses information. Trailing NUL bytes are stripped:
// Serialize always appends one NUL terminator after a string payload,
// and it is not part of the logical string.
func latin1Decode(b []byte) string {
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
