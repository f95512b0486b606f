package wire

import (
	"bytes"
	"testing"
)

func TestVarRoundTrip(t *testing.T) {
	cases := []Var{
		ByteVar(VarAFKStatus, 1),
		IntVar(VarCitizenNumber, -42),
		UintVar(VarWorldUsers, 0xFFFFFFFE),
		FloatVar(VarPositionNorth, 3.5),
		StringVar(VarCitizenName, "Zippy"),
		StringVar(VarCitizenName, ""),
		DataVar(VarEncryptionKey, []byte{1, 2, 3, 4}),
	}

	for _, v := range cases {
		enc, err := v.Serialize()
		if err != nil {
			t.Fatalf("serialize %v: %v", v, err)
		}
		got, n, err := DeserializeVar(enc)
		if err != nil {
			t.Fatalf("deserialize %v: %v", v, err)
		}
		if n != len(enc) {
			t.Fatalf("consumed %d, want %d", n, len(enc))
		}
		if got != v {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, v)
		}
	}
}

func TestPacketRoundTrip(t *testing.T) {
	p := NewPacket(OpLogin)
	p.AddString(VarLoginUsername, "swifty")
	p.AddInt(VarCitizenNumber, 1234)
	p.AddData(VarUniverseLicense, []byte("license-blob"))

	raw, err := p.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	got, n, err := Deserialize(raw)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if n != len(raw) {
		t.Fatalf("consumed %d, want %d", n, len(raw))
	}
	if got.Opcode != p.Opcode {
		t.Fatalf("opcode mismatch: got %v want %v", got.Opcode, p.Opcode)
	}
	if got.GetString(VarLoginUsername) != "swifty" {
		t.Fatalf("username mismatch: %q", got.GetString(VarLoginUsername))
	}
	if got.GetInt(VarCitizenNumber) != 1234 {
		t.Fatalf("citizen number mismatch: %d", got.GetInt(VarCitizenNumber))
	}
	if !bytes.Equal(got.GetData(VarUniverseLicense), []byte("license-blob")) {
		t.Fatalf("license blob mismatch")
	}
}

func TestDeserializeCheckShort(t *testing.T) {
	_, err := DeserializeCheck([]byte{1, 2, 3})
	de, ok := err.(*DeserializeError)
	if !ok || de.Kind != ErrShort {
		t.Fatalf("expected ErrShort, got %v", err)
	}
}

func TestDeserializeCheckNeedsMoreData(t *testing.T) {
	p := NewPacket(OpHeartbeat)
	p.AddInt(VarSessionID, 7)
	raw, err := p.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	_, err = DeserializeCheck(raw[:len(raw)-1])
	de, ok := err.(*DeserializeError)
	if !ok || de.Kind != ErrShort {
		t.Fatalf("expected ErrShort for truncated buffer, got %v", err)
	}

	hdr, err := DeserializeCheck(raw)
	if err != nil {
		t.Fatalf("expected complete buffer to check out, got %v", err)
	}
	if hdr.Opcode != OpHeartbeat {
		t.Fatalf("opcode mismatch: %v", hdr.Opcode)
	}
}

func TestMaybeCompressRoundTrip(t *testing.T) {
	p := NewPacket(OpWorldList)
	for i := 0; i < 40; i++ {
		p.AddString(VarWorldListName, "a long enough world name to push past the compression threshold")
	}

	out, err := MaybeCompress(p)
	if err != nil {
		t.Fatalf("maybe compress: %v", err)
	}

	hdr, err := DeserializeTagHeader(out)
	if err != nil {
		t.Fatalf("deserialize header: %v", err)
	}
	if hdr.Opcode != OpCompressed || hdr.Header1 != 1 {
		t.Fatalf("expected compressed envelope header, got %+v", hdr)
	}

	inflated, err := Decompress(out)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}

	got, n, err := Deserialize(inflated)
	if err != nil {
		t.Fatalf("deserialize inflated: %v", err)
	}
	if n != len(inflated) {
		t.Fatalf("consumed %d, want %d", n, len(inflated))
	}
	if len(got.Vars) != len(p.Vars) {
		t.Fatalf("var count mismatch: got %d want %d", len(got.Vars), len(p.Vars))
	}
}

func TestMaybeCompressSkipsSmallPackets(t *testing.T) {
	p := NewPacket(OpHeartbeat)
	out, err := MaybeCompress(p)
	if err != nil {
		t.Fatalf("maybe compress: %v", err)
	}
	hdr, err := DeserializeTagHeader(out)
	if err != nil {
		t.Fatalf("deserialize header: %v", err)
	}
	if hdr.Opcode == OpCompressed {
		t.Fatalf("small packet should not be compressed")
	}
}

func TestPacketGroupRejectsOversizedPush(t *testing.T) {
	var g PacketGroup
	big := NewPacket(OpWorldList)
	big.AddData(VarEncryptionKey, bytes.Repeat([]byte{0xAB}, maxGroupLen-tagHeaderLen-4))

	returned, err := g.Push(big)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if returned != nil {
		t.Fatalf("single packet under the cap should be accepted")
	}

	second := NewPacket(OpHeartbeat)
	second.AddInt(VarSessionID, 1)
	returned, err = g.Push(second)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if returned != second {
		t.Fatalf("expected push to reject and return the packet once the cap is reached")
	}
}
