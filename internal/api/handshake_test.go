package api

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	"github.com/flynn/noise"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testPSK(fill byte) []byte {
	return bytes.Repeat([]byte{fill}, PSKSize)
}

// respond plays the device side of the handshake. It returns the device's
// cipher, or an error after closing conn.
func respond(conn net.Conn, psk []byte) (*Cipher, error) {
	fc := NewFrameConn(conn, 2*time.Second)
	fail := func(err error) (*Cipher, error) {
		conn.Close()
		return nil, err
	}

	hs, err := noise.NewHandshakeState(NoiseConfig(psk, false))
	if err != nil {
		return fail(err)
	}
	if _, _, err := fc.ReadFrame(); err != nil {
		return fail(err)
	}
	if err := fc.WriteFrame(FramePlaintext, append([]byte{0x01}, "testnode"...)); err != nil {
		return fail(err)
	}
	_, msg, err := fc.ReadFrame()
	if err != nil {
		return fail(err)
	}
	if len(msg) == 0 || msg[0] != 0x00 {
		return fail(errors.New("missing handshake indicator"))
	}
	if _, _, _, err := hs.ReadMessage(nil, msg[1:]); err != nil {
		return fail(err)
	}
	reply, toDevice, toClient, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return fail(err)
	}
	if err := fc.WriteFrame(FramePlaintext, append([]byte{0x00}, reply...)); err != nil {
		return fail(err)
	}
	return NewCipher(toClient, toDevice), nil
}

func TestHandshakeSuccess(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	psk := testPSK(0x11)
	type result struct {
		c   *Cipher
		err error
	}
	devCh := make(chan result, 1)
	go func() {
		c, err := respond(server, psk)
		devCh <- result{c, err}
	}()

	clientCipher, err := Handshake(NewFrameConn(client, 2*time.Second), psk, testLogger())
	if err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	dev := <-devCh
	if dev.err != nil {
		t.Fatalf("device side: %v", dev.err)
	}

	for _, msg := range [][]byte{[]byte("first"), {}, bytes.Repeat([]byte{0x5A}, 1000)} {
		ct, err := clientCipher.Encrypt(msg)
		if err != nil {
			t.Fatal(err)
		}
		pt, err := dev.c.Decrypt(ct)
		if err != nil {
			t.Fatalf("device decrypt: %v", err)
		}
		if !bytes.Equal(pt, msg) {
			t.Errorf("device got %q, want %q", pt, msg)
		}

		ct, err = dev.c.Encrypt(msg)
		if err != nil {
			t.Fatal(err)
		}
		pt, err = clientCipher.Decrypt(ct)
		if err != nil {
			t.Fatalf("client decrypt: %v", err)
		}
		if !bytes.Equal(pt, msg) {
			t.Errorf("client got %q, want %q", pt, msg)
		}
	}
}

func TestHandshakePSKMismatch(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	go respond(server, testPSK(0x22))

	c, err := Handshake(NewFrameConn(client, 2*time.Second), testPSK(0x33), testLogger())
	if !errors.Is(err, ErrHandshake) {
		t.Fatalf("err = %v, want ErrHandshake", err)
	}
	if c != nil {
		t.Error("cipher returned on failed handshake")
	}
}

func TestHandshakeTransportFailure(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	server.Close()

	_, err := Handshake(NewFrameConn(client, time.Second), testPSK(0x44), testLogger())
	if !errors.Is(err, ErrHandshake) {
		t.Fatalf("err = %v, want ErrHandshake", err)
	}
	if !errors.Is(err, ErrTransport) {
		t.Errorf("err = %v, want wrapped ErrTransport", err)
	}
}

func TestHandshakeRejectsShortPSK(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	if _, err := Handshake(NewFrameConn(client, time.Second), []byte("short"), testLogger()); !errors.Is(err, ErrHandshake) {
		t.Fatalf("err = %v, want ErrHandshake", err)
	}
}

func TestCipherRejectsTamperedCiphertext(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	psk := testPSK(0x55)
	devCh := make(chan *Cipher, 1)
	go func() {
		c, _ := respond(server, psk)
		devCh <- c
	}()
	c, err := Handshake(NewFrameConn(client, 2*time.Second), psk, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	dev := <-devCh

	ct, _ := c.Encrypt([]byte("payload"))
	ct[0] ^= 0xFF
	if _, err := dev.Decrypt(ct); !errors.Is(err, ErrProtocol) {
		t.Errorf("err = %v, want ErrProtocol", err)
	}
}

func TestDecodePSK(t *testing.T) {
	valid := base64.StdEncoding.EncodeToString(testPSK(0x01))
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", valid, false},
		{"not base64", "!!!", true},
		{"too short", base64.StdEncoding.EncodeToString([]byte("short")), true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := DecodePSK(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(key) != PSKSize {
				t.Errorf("key length = %d", len(key))
			}
		})
	}
}
