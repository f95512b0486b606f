package cipher

import "testing"

func sampleData(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i)
	}
	return buf
}

func TestA4RoundTrip(t *testing.T) {
	enc, err := NewA4()
	if err != nil {
		t.Fatalf("new a4: %v", err)
	}
	dec, err := A4FromKey(enc.InitialKey())
	if err != nil {
		t.Fatalf("from key: %v", err)
	}

	data := sampleData(2048)
	encrypted := append([]byte(nil), data...)
	enc.Apply(encrypted)

	decrypted := append([]byte(nil), encrypted...)
	dec.Apply(decrypted)

	if string(decrypted) != string(data) {
		t.Fatalf("round trip did not recover original data")
	}
}

func TestA4RejectsShortKey(t *testing.T) {
	if _, err := A4FromKey(make([]byte, 8)); err != ErrKeyTooShort {
		t.Fatalf("expected ErrKeyTooShort, got %v", err)
	}
}

func TestAESRoundTrip(t *testing.T) {
	enc, err := NewAES()
	if err != nil {
		t.Fatalf("new aes: %v", err)
	}
	dec, err := AESFromKey(enc.InitialKey())
	if err != nil {
		t.Fatalf("from key: %v", err)
	}

	data := sampleData(2048)
	encrypted := append([]byte(nil), data...)
	enc.Apply(encrypted)

	decrypted := append([]byte(nil), encrypted...)
	dec.Apply(decrypted)

	if string(decrypted) != string(data) {
		t.Fatalf("round trip did not recover original data")
	}
}

func TestAESRejectsShortKey(t *testing.T) {
	if _, err := AESFromKey(make([]byte, 16)); err != ErrKeyTooShort {
		t.Fatalf("expected ErrKeyTooShort, got %v", err)
	}
}

func TestAESMatchesReferenceDerivation(t *testing.T) {
	src := make([]byte, 64)
	for i := range src {
		src[i] = byte(i * 3)
	}

	a, err := AESFromKey(src)
	if err != nil {
		t.Fatalf("from key: %v", err)
	}

	var wantKey [32]byte
	for i := 0; i < len(src); i++ {
		wantKey[i%len(wantKey)] += src[len(src)-1-i]
	}

	b, err := AESFromKey(src)
	if err != nil {
		t.Fatalf("from key: %v", err)
	}

	data := sampleData(64)
	ca := append([]byte(nil), data...)
	a.Apply(ca)
	cb := append([]byte(nil), data...)
	b.Apply(cb)

	if string(ca) != string(cb) {
		t.Fatalf("two ciphers from the same key produced different keystreams")
	}
}
