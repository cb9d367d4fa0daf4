package api

import (
	"bytes"
	"errors"
	"net"
	"testing"
	"time"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		typ     byte
		payload []byte
	}{
		{"empty plaintext", FramePlaintext, nil},
		{"one byte encrypted", FrameEncrypted, []byte{0x42}},
		{"max payload", FrameEncrypted, bytes.Repeat([]byte{0xA5}, MaxFramePayload)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := EncodeFrame(tt.typ, tt.payload)
			if err != nil {
				t.Fatalf("EncodeFrame: %v", err)
			}
			if len(buf) != frameHeaderSize+len(tt.payload) {
				t.Fatalf("encoded length = %d, want %d", len(buf), frameHeaderSize+len(tt.payload))
			}

			// Trailing bytes belong to the next frame and must be left unread.
			r := bytes.NewReader(append(buf, 0xFF, 0xFF))
			typ, payload, err := DecodeFrame(r)
			if err != nil {
				t.Fatalf("DecodeFrame: %v", err)
			}
			if typ != tt.typ {
				t.Errorf("type = %d, want %d", typ, tt.typ)
			}
			if !bytes.Equal(payload, tt.payload) {
				t.Errorf("payload mismatch (len %d, want %d)", len(payload), len(tt.payload))
			}
			if r.Len() != 2 {
				t.Errorf("reader has %d bytes left, want 2", r.Len())
			}
		})
	}
}

func TestEncodeFrameHeader(t *testing.T) {
	buf, err := EncodeFrame(FrameEncrypted, []byte("abc"))
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x01, 0x00, 0x03, 'a', 'b', 'c'}
	if !bytes.Equal(buf, want) {
		t.Errorf("got % X, want % X", buf, want)
	}
}

func TestEncodeFrameErrors(t *testing.T) {
	if _, err := EncodeFrame(0x02, nil); !errors.Is(err, ErrProtocol) {
		t.Errorf("bad type: err = %v, want ErrProtocol", err)
	}
	if _, err := EncodeFrame(FrameEncrypted, make([]byte, MaxFramePayload+1)); !errors.Is(err, ErrProtocol) {
		t.Errorf("oversize: err = %v, want ErrProtocol", err)
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{"unknown tag", []byte{0x02, 0x00, 0x00}, ErrProtocol},
		{"short header", []byte{0x01, 0x00}, ErrTransport},
		{"short payload", []byte{0x01, 0x00, 0x05, 'a', 'b'}, ErrTransport},
		{"empty stream", nil, ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeFrame(bytes.NewReader(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFrameConnReadWrite(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	fc := NewFrameConn(client, time.Second)
	go func() {
		buf, _ := EncodeFrame(FrameEncrypted, []byte("hello"))
		server.Write(buf)
	}()

	typ, payload, err := fc.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if typ != FrameEncrypted || string(payload) != "hello" {
		t.Errorf("got (%d, %q)", typ, payload)
	}

	done := make(chan []byte)
	go func() {
		_, p, _ := DecodeFrame(server)
		done <- p
	}()
	if err := fc.WriteFrame(FramePlaintext, []byte{1, 2}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if got := <-done; !bytes.Equal(got, []byte{1, 2}) {
		t.Errorf("server read % X", got)
	}
}

func TestFrameConnTimeout(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	fc := NewFrameConn(client, 20*time.Millisecond)
	_, _, err := fc.ReadFrame()
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestFrameConnPartialFrameIsTransportError(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	fc := NewFrameConn(client, time.Second)
	go func() {
		server.Write([]byte{0x01, 0x00, 0x10, 'x'})
		server.Close()
	}()

	_, _, err := fc.ReadFrame()
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}

func TestFrameConnClosedPeer(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	server.Close()

	fc := NewFrameConn(client, time.Second)
	if _, _, err := fc.ReadFrame(); !errors.Is(err, ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}
