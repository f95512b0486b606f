package license

import (
	"net"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	d := Default()
	if err := d.SetIP(net.IPv4(203, 0, 113, 9)); err != nil {
		t.Fatalf("set ip: %v", err)
	}
	d.Port = 6670
	d.SetName("aw")

	decoded, err := Decode(d.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != d {
		t.Fatalf("round trip mismatch: %+v vs %+v", decoded, d)
	}
}

func TestEncodeIsFixedLength(t *testing.T) {
	// license_version(4) + ip(4) + port(4) + land_limit(4) + max_users(4)
	// + world_limit(4) + expiration(4) + major(2) + minor(2) + name(32)
	// + can_have_bots(4) = 68 bytes.
	const want = 68
	if got := len(Default().Encode()); got != want {
		t.Fatalf("expected %d byte blob, got %d", want, got)
	}
}

func TestSetIPRejectsIPv6(t *testing.T) {
	var d Data
	if err := d.SetIP(net.ParseIP("::1")); err == nil {
		t.Fatalf("expected an error for an IPv6 address")
	}
}

func TestGeneratorCreateProducesDecryptableCiphertext(t *testing.T) {
	gen, err := NewGenerator()
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	blob, err := gen.Create(net.IPv4(198, 51, 100, 5), 6670, "testworld")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(blob) == 0 {
		t.Fatalf("expected a non-empty ciphertext")
	}
}
