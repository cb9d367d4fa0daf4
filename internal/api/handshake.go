package api

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/flynn/noise"
)

// PSKSize is the length of a decoded API encryption key.
const PSKSize = 32

const noisePrologue = "NoiseAPIInit\x00\x00"

var cipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashSHA256)

// FrameReadWriter is the frame transport the handshake runs over.
type FrameReadWriter interface {
	WriteFrame(typ byte, payload []byte) error
	ReadFrame() (byte, []byte, error)
}

// DecodePSK decodes a base64 API encryption key.
func DecodePSK(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(key) != PSKSize {
		return nil, fmt.Errorf("encryption key is %d bytes, want %d", len(key), PSKSize)
	}
	return key, nil
}

// NoiseConfig returns the Noise_NNpsk0_25519_ChaChaPoly_SHA256 handshake
// configuration with the API prologue and psk installed.
func NoiseConfig(psk []byte, initiator bool) noise.Config {
	return noise.Config{
		CipherSuite:           cipherSuite,
		Random:                rand.Reader,
		Pattern:               noise.HandshakeNN,
		Initiator:             initiator,
		Prologue:              []byte(noisePrologue),
		PresharedKey:          psk,
		PresharedKeyPlacement: 0,
	}
}

// Cipher is the split transport cipher produced by a completed handshake.
// Encrypt and Decrypt each keep their own nonce and must not be called
// concurrently with themselves.
type Cipher struct {
	encrypt *noise.CipherState
	decrypt *noise.CipherState
}

// NewCipher pairs the two directions of a transport cipher.
func NewCipher(encrypt, decrypt *noise.CipherState) *Cipher {
	return &Cipher{encrypt: encrypt, decrypt: decrypt}
}

func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	out, err := c.encrypt.Encrypt(nil, nil, plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: encrypt: %w", ErrProtocol, err)
	}
	return out, nil
}

func (c *Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	out, err := c.decrypt.Decrypt(nil, nil, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: decrypt: %w", ErrProtocol, err)
	}
	return out, nil
}

// Handshake runs the initiator side of the Noise exchange over rw:
//
//  1. an empty probe frame,
//  2. the device identification frame, which is discarded,
//  3. [0x00][initiator message],
//  4. the device reply, whose first byte is dropped before it is fed to
//     the handshake state.
//
// Every failure is wrapped in ErrHandshake; a transport cause stays
// matchable with errors.Is.
func Handshake(rw FrameReadWriter, psk []byte, logger *slog.Logger) (*Cipher, error) {
	if len(psk) != PSKSize {
		return nil, fmt.Errorf("%w: psk is %d bytes, want %d", ErrHandshake, len(psk), PSKSize)
	}
	hs, err := noise.NewHandshakeState(NoiseConfig(psk, true))
	if err != nil {
		return nil, fmt.Errorf("%w: init: %w", ErrHandshake, err)
	}

	if err := rw.WriteFrame(FramePlaintext, nil); err != nil {
		return nil, fmt.Errorf("%w: send probe: %w", ErrHandshake, err)
	}
	_, ident, err := rw.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("%w: read device identification: %w", ErrHandshake, err)
	}
	logger.Debug("handshake probe answered", "bytes", len(ident))

	msg, _, _, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build initiator message: %w", ErrHandshake, err)
	}
	if err := rw.WriteFrame(FramePlaintext, append([]byte{0x00}, msg...)); err != nil {
		return nil, fmt.Errorf("%w: send initiator message: %w", ErrHandshake, err)
	}

	_, resp, err := rw.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("%w: read device response: %w", ErrHandshake, err)
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("%w: empty device response", ErrHandshake)
	}
	if resp[0] != 0x00 {
		logger.Debug("device response has non-zero status byte", "status", resp[0])
	}
	_, encrypt, decrypt, err := hs.ReadMessage(nil, resp[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: process device response: %w", ErrHandshake, err)
	}
	if encrypt == nil || decrypt == nil {
		return nil, fmt.Errorf("%w: handshake incomplete after device response", ErrHandshake)
	}
	logger.Debug("handshake complete")
	return NewCipher(encrypt, decrypt), nil
}
