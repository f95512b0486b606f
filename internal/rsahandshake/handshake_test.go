package rsahandshake

import "testing"

func TestHandshakeRoundTrip(t *testing.T) {
	server, err := New()
	if err != nil {
		t.Fatalf("new server handshake: %v", err)
	}
	client, err := New()
	if err != nil {
		t.Fatalf("new client handshake: %v", err)
	}

	serverPub, err := server.EncodePublicKey()
	if err != nil {
		t.Fatalf("encode server public key: %v", err)
	}
	clientPub, err := client.EncodePublicKey()
	if err != nil {
		t.Fatalf("encode client public key: %v", err)
	}

	serverStreamKey := []byte("server-initial-key-material-0123")
	encryptedForClient, err := EncryptForPeer(clientPub, serverStreamKey)
	if err != nil {
		t.Fatalf("encrypt for client: %v", err)
	}
	gotByClient, err := client.Decrypt(encryptedForClient)
	if err != nil {
		t.Fatalf("client decrypt: %v", err)
	}
	if string(gotByClient) != string(serverStreamKey) {
		t.Fatalf("client did not recover the server's stream key")
	}

	clientStreamKey := []byte("client-initial-key-material-0123")
	encryptedForServer, err := EncryptForPeer(serverPub, clientStreamKey)
	if err != nil {
		t.Fatalf("encrypt for server: %v", err)
	}
	gotByServer, err := server.Decrypt(encryptedForServer)
	if err != nil {
		t.Fatalf("server decrypt: %v", err)
	}
	if string(gotByServer) != string(clientStreamKey) {
		t.Fatalf("server did not recover the client's stream key")
	}
}

func TestDecodePublicKeyRejectsGarbage(t *testing.T) {
	if _, err := decodePublicKey([]byte("not a key")); err == nil {
		t.Fatalf("expected an error decoding garbage bytes")
	}
}
