// Package apitest provides an in-process ESPHome device that speaks the
// native API over a loopback TCP socket, for end-to-end tests.
package apitest

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/flynn/noise"

	"esphome-go/internal/api"
)

// Config describes the simulated device.
type Config struct {
	PSK        []byte
	Hello      api.HelloResponse
	DeviceInfo api.DeviceInfoResponse
	Entities   []api.EntityDescriptor

	// States are sent in order after SubscribeStatesRequest.
	States []api.Message

	// Password, when set, must match ConnectRequest.Password.
	Password string

	// RejectConnections closes that many accepted connections before the
	// handshake starts.
	RejectConnections int
}

// Device is a running stub device.
type Device struct {
	cfg Config
	ln  net.Listener

	mu       sync.Mutex
	accepted int
	received []api.Message
	session  *session

	wg sync.WaitGroup
}

type session struct {
	conn   net.Conn
	fc     *api.FrameConn
	cipher *api.Cipher
	wmu    sync.Mutex
}

// Start listens on an ephemeral loopback port. The device is closed when
// the test finishes.
func Start(t testing.TB, cfg Config) *Device {
	t.Helper()
	if cfg.Hello.APIVersionMajor == 0 {
		cfg.Hello = api.HelloResponse{APIVersionMajor: 1, APIVersionMinor: 9, ServerInfo: "apitest", Name: cfg.DeviceInfo.Name}
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("apitest: listen: %v", err)
	}
	d := &Device{cfg: cfg, ln: ln}
	d.wg.Add(1)
	go d.acceptLoop()
	t.Cleanup(d.Close)
	return d
}

// Host returns the listen address host.
func (d *Device) Host() string {
	host, _, _ := net.SplitHostPort(d.ln.Addr().String())
	return host
}

// Port returns the listen port.
func (d *Device) Port() int {
	_, port, _ := net.SplitHostPort(d.ln.Addr().String())
	n, _ := strconv.Atoi(port)
	return n
}

// Close stops accepting and drops the current session.
func (d *Device) Close() {
	d.ln.Close()
	d.DropConnection()
	d.wg.Wait()
}

// Connections reports how many TCP connections were accepted.
func (d *Device) Connections() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.accepted
}

// Received returns every message the device has decoded, in order.
func (d *Device) Received() []api.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]api.Message(nil), d.received...)
}

// WaitFor polls until a received message satisfies match.
func (d *Device) WaitFor(match func(api.Message) bool, timeout time.Duration) (api.Message, bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, m := range d.Received() {
			if match(m) {
				return m, true
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil, false
}

// Send pushes a message on the current session.
func (d *Device) Send(m api.Message) error {
	d.mu.Lock()
	s := d.session
	d.mu.Unlock()
	if s == nil {
		return errors.New("apitest: no session")
	}
	return s.send(m)
}

// SendTagged encrypts m like Send but writes it under frame type typ.
func (d *Device) SendTagged(typ byte, m api.Message) error {
	d.mu.Lock()
	s := d.session
	d.mu.Unlock()
	if s == nil {
		return errors.New("apitest: no session")
	}
	return s.sendTagged(typ, m)
}

// DropConnection closes the current session socket without a disconnect
// exchange.
func (d *Device) DropConnection() {
	d.mu.Lock()
	s := d.session
	d.session = nil
	d.mu.Unlock()
	if s != nil {
		s.conn.Close()
	}
}

func (d *Device) acceptLoop() {
	defer d.wg.Done()
	for {
		conn, err := d.ln.Accept()
		if err != nil {
			return
		}
		d.mu.Lock()
		d.accepted++
		reject := d.accepted <= d.cfg.RejectConnections
		d.mu.Unlock()
		if reject {
			conn.Close()
			continue
		}
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.serve(conn)
		}()
	}
}

func (d *Device) serve(conn net.Conn) {
	defer conn.Close()

	s := &session{conn: conn, fc: api.NewFrameConn(conn, 0)}
	if err := s.handshake(d.cfg.PSK, d.cfg.DeviceInfo.Name); err != nil {
		return
	}
	d.mu.Lock()
	d.session = s
	d.mu.Unlock()

	for {
		m, err := s.read()
		if err != nil {
			return
		}
		d.mu.Lock()
		d.received = append(d.received, m)
		d.mu.Unlock()

		if done := d.reply(s, m); done {
			return
		}
	}
}

// reply answers the requests a firmware device would answer. It reports
// whether the session is over.
func (d *Device) reply(s *session, m api.Message) bool {
	var err error
	switch m := m.(type) {
	case *api.HelloRequest:
		hello := d.cfg.Hello
		err = s.send(&hello)
	case *api.ConnectRequest:
		err = s.send(&api.ConnectResponse{InvalidPassword: m.Password != d.cfg.Password})
	case *api.DeviceInfoRequest:
		info := d.cfg.DeviceInfo
		err = s.send(&info)
	case *api.ListEntitiesRequest:
		for _, e := range d.cfg.Entities {
			if err = s.send(e); err != nil {
				break
			}
		}
		if err == nil {
			err = s.send(&api.ListEntitiesDoneResponse{})
		}
	case *api.SubscribeStatesRequest:
		for _, st := range d.cfg.States {
			if err = s.send(st); err != nil {
				break
			}
		}
	case *api.PingRequest:
		err = s.send(&api.PingResponse{})
	case *api.DisconnectRequest:
		s.send(&api.DisconnectResponse{})
		return true
	case *api.DisconnectResponse:
		return true
	}
	return err != nil
}

func (s *session) handshake(psk []byte, name string) error {
	hs, err := noise.NewHandshakeState(api.NoiseConfig(psk, false))
	if err != nil {
		return err
	}
	if _, _, err := s.fc.ReadFrame(); err != nil {
		return err
	}
	if err := s.fc.WriteFrame(api.FramePlaintext, append([]byte{0x01}, name...)); err != nil {
		return err
	}
	_, msg, err := s.fc.ReadFrame()
	if err != nil {
		return err
	}
	if len(msg) == 0 || msg[0] != 0x00 {
		return errors.New("apitest: bad handshake indicator")
	}
	if _, _, _, err := hs.ReadMessage(nil, msg[1:]); err != nil {
		return fmt.Errorf("apitest: read initiator message: %w", err)
	}
	reply, toDevice, toClient, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return err
	}
	if err := s.fc.WriteFrame(api.FramePlaintext, append([]byte{0x00}, reply...)); err != nil {
		return err
	}
	s.cipher = api.NewCipher(toClient, toDevice)
	return nil
}

func (s *session) read() (api.Message, error) {
	_, payload, err := s.fc.ReadFrame()
	if err != nil {
		return nil, err
	}
	plain, err := s.cipher.Decrypt(payload)
	if err != nil {
		return nil, err
	}
	return api.DecodeEnvelope(plain)
}

func (s *session) send(m api.Message) error {
	return s.sendTagged(api.FrameEncrypted, m)
}

func (s *session) sendTagged(typ byte, m api.Message) error {
	env, err := api.EncodeEnvelope(m)
	if err != nil {
		return err
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	ct, err := s.cipher.Encrypt(env)
	if err != nil {
		return err
	}
	return s.fc.WriteFrame(typ, ct)
}
