// Package device drives one native-API session with an ESPHome device:
// connect, handshake, authenticate, list entities, stream and reconnect.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"esphome-go/internal/api"
	"esphome-go/internal/entity"
)

const (
	DefaultPort       = 6053
	DefaultClientInfo = "esphome-go"

	apiVersionMajor = 1
	apiVersionMinor = 9

	defaultConnectTimeout = 10 * time.Second
	defaultReadTimeout    = 20 * time.Second
)

// Config describes how to reach a device.
type Config struct {
	Address  string
	Port     int
	PSK      []byte
	Password string

	// ClientInfo is sent in the Hello request.
	ClientInfo string

	ConnectTimeout time.Duration

	// ReadTimeout bounds each read. An expired read sends a keepalive ping.
	// Only Entities gives up, after a second expiry in a row.
	ReadTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ClientInfo == "" {
		c.ClientInfo = DefaultClientInfo
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = defaultReadTimeout
	}
}

// State is the session lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateHandshaking
	StateAuthenticating
	StateReady
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateHandshaking:
		return "handshaking"
	case StateAuthenticating:
		return "authenticating"
	case StateReady:
		return "ready"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// Info is the device metadata gathered while connecting.
type Info struct {
	Name                   string `json:"name"`
	FriendlyName           string `json:"friendly_name,omitempty"`
	MACAddress             string `json:"mac_address"`
	ESPHomeVersion         string `json:"esphome_version"`
	CompilationTime        string `json:"compilation_time"`
	Model                  string `json:"model"`
	Manufacturer           string `json:"manufacturer,omitempty"`
	SuggestedArea          string `json:"suggested_area,omitempty"`
	ProjectName            string `json:"project_name,omitempty"`
	ProjectVersion         string `json:"project_version,omitempty"`
	UsesPassword           bool   `json:"uses_password"`
	HasDeepSleep           bool   `json:"has_deep_sleep"`
	WebserverPort          uint32 `json:"webserver_port,omitempty"`
	BluetoothMACAddress    string `json:"bluetooth_mac_address,omitempty"`
	APIEncryptionSupported bool   `json:"api_encryption_supported"`
	APIVersionMajor        uint32 `json:"api_version_major"`
	APIVersionMinor        uint32 `json:"api_version_minor"`
	ServerInfo             string `json:"server_info"`
}

func newInfo(hello *api.HelloResponse, di *api.DeviceInfoResponse) *Info {
	return &Info{
		Name:                   di.Name,
		FriendlyName:           di.FriendlyName,
		MACAddress:             di.MACAddress,
		ESPHomeVersion:         di.ESPHomeVersion,
		CompilationTime:        di.CompilationTime,
		Model:                  di.Model,
		Manufacturer:           di.Manufacturer,
		SuggestedArea:          di.SuggestedArea,
		ProjectName:            di.ProjectName,
		ProjectVersion:         di.ProjectVersion,
		UsesPassword:           di.UsesPassword,
		HasDeepSleep:           di.HasDeepSleep,
		WebserverPort:          di.WebserverPort,
		BluetoothMACAddress:    di.BluetoothMACAddress,
		APIEncryptionSupported: di.APIEncryptionSupported,
		APIVersionMajor:        hello.APIVersionMajor,
		APIVersionMinor:        hello.APIVersionMinor,
		ServerInfo:             hello.ServerInfo,
	}
}

// session is one authenticated connection.
type session struct {
	fc     *api.FrameConn
	cipher *api.Cipher
}

// Device is a client for one ESPHome device.
type Device struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	state    State
	sess     *session
	info     *Info
	registry *entity.Registry
	listed   bool

	// closed is set when Disconnect ended the last session.
	closed bool

	observerMu sync.RWMutex
	observer   Observer
	funcs      funcObserver

	writeMu sync.Mutex
	stats   counters
}

// New creates a disconnected device client.
func New(cfg Config, logger *slog.Logger) *Device {
	cfg.applyDefaults()
	return &Device{
		cfg:    cfg,
		logger: logger.With("component", "device", "address", cfg.Address),
		now:    time.Now,
	}
}

// Address returns host:port.
func (d *Device) Address() string {
	return net.JoinHostPort(d.cfg.Address, strconv.Itoa(d.cfg.Port))
}

func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Info returns the metadata of the current session.
func (d *Device) Info() (Info, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.info == nil {
		return Info{}, false
	}
	return *d.info, true
}

func (d *Device) Stats() Stats {
	return d.stats.snapshot()
}

// Registry returns the entity registry of the current session, or nil.
func (d *Device) Registry() *entity.Registry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registry
}

// SetObserver replaces the observer.
func (d *Device) SetObserver(o Observer) {
	d.observerMu.Lock()
	d.observer = o
	d.observerMu.Unlock()
}

// OnConnect replaces the connect callback.
func (d *Device) OnConnect(fn func()) {
	d.observerMu.Lock()
	d.funcs.onConnect = fn
	d.observerMu.Unlock()
}

// OnDisconnect replaces the disconnect callback.
func (d *Device) OnDisconnect(fn func(error)) {
	d.observerMu.Lock()
	d.funcs.onDisconnect = fn
	d.observerMu.Unlock()
}

// OnMessage replaces the message callback.
func (d *Device) OnMessage(fn func(Unit)) {
	d.observerMu.Lock()
	d.funcs.onMessage = fn
	d.observerMu.Unlock()
}

func (d *Device) observers() (Observer, funcObserver) {
	d.observerMu.RLock()
	defer d.observerMu.RUnlock()
	return d.observer, d.funcs
}

func (d *Device) notifyConnect() {
	o, f := d.observers()
	if o != nil {
		o.OnConnect()
	}
	f.OnConnect()
}

func (d *Device) notifyDisconnect(err error) {
	o, f := d.observers()
	if o != nil {
		o.OnDisconnect(err)
	}
	f.OnDisconnect(err)
}

func (d *Device) notify(u Unit) {
	o, f := d.observers()
	if o != nil {
		o.OnMessage(u)
	}
	f.OnMessage(u)
}

func (d *Device) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

// Connect dials the device, runs the handshake and the Hello, Connect and
// DeviceInfo exchange. On failure the socket is closed, the state returns
// to StateDisconnected and observers are not called.
func (d *Device) Connect(ctx context.Context) error {
	d.mu.Lock()
	if d.state != StateDisconnected {
		d.mu.Unlock()
		return ErrAlreadyConnected
	}
	d.state = StateHandshaking
	d.mu.Unlock()

	dialer := net.Dialer{Timeout: d.cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.Address())
	if err != nil {
		d.setState(StateDisconnected)
		return fmt.Errorf("%w: dial %s: %w", api.ErrTransport, d.Address(), err)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	s := &session{fc: api.NewFrameConn(conn, d.cfg.ReadTimeout)}
	hello, devInfo, err := d.setup(s)
	if err != nil {
		conn.Close()
		d.setState(StateDisconnected)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	d.mu.Lock()
	d.sess = s
	d.info = newInfo(hello, devInfo)
	d.registry = entity.NewRegistry(d)
	d.listed = false
	d.closed = false
	d.state = StateReady
	d.mu.Unlock()

	d.stats.connects.Add(1)
	d.stats.connected.Store(true)
	d.logger.Info("connected",
		"name", devInfo.Name,
		"esphome_version", devInfo.ESPHomeVersion,
		"api_version", fmt.Sprintf("%d.%d", hello.APIVersionMajor, hello.APIVersionMinor))
	d.notifyConnect()
	return nil
}

func (d *Device) setup(s *session) (*api.HelloResponse, *api.DeviceInfoResponse, error) {
	cipher, err := api.Handshake(s.fc, d.cfg.PSK, d.logger)
	if err != nil {
		d.stats.handshakeFailures.Add(1)
		return nil, nil, err
	}
	s.cipher = cipher
	d.setState(StateAuthenticating)

	hello, err := request[*api.HelloResponse](d, s, &api.HelloRequest{
		ClientInfo:      d.cfg.ClientInfo,
		APIVersionMajor: apiVersionMajor,
		APIVersionMinor: apiVersionMinor,
	})
	if err != nil {
		return nil, nil, err
	}
	if hello.APIVersionMajor != apiVersionMajor {
		d.logger.Warn("device speaks a different API major version",
			"device", hello.APIVersionMajor, "client", apiVersionMajor)
	}

	conn, err := request[*api.ConnectResponse](d, s, &api.ConnectRequest{Password: d.cfg.Password})
	if err != nil {
		return nil, nil, err
	}
	if conn.InvalidPassword {
		return nil, nil, ErrAuthentication
	}

	devInfo, err := request[*api.DeviceInfoResponse](d, s, &api.DeviceInfoRequest{})
	if err != nil {
		return nil, nil, err
	}
	return hello, devInfo, nil
}

// request sends req and expects the next message to be a T.
func request[T api.Message](d *Device, s *session, req api.Message) (T, error) {
	var zero T
	if err := d.sendOn(s, req); err != nil {
		return zero, err
	}
	m, err := d.read(s)
	if err != nil {
		return zero, err
	}
	resp, ok := m.(T)
	if !ok {
		return zero, fmt.Errorf("%w: expected %s, got %s", api.ErrProtocol, api.Name(zero), api.Name(m))
	}
	return resp, nil
}

// Send encrypts and writes m on the current session. It is safe for
// concurrent use.
func (d *Device) Send(m api.Message) error {
	d.mu.Lock()
	s := d.sess
	d.mu.Unlock()
	if s == nil {
		return ErrNotConnected
	}
	return d.sendOn(s, m)
}

func (d *Device) sendOn(s *session, m api.Message) error {
	env, err := api.EncodeEnvelope(m)
	if err != nil {
		return err
	}

	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	ct, err := s.cipher.Encrypt(env)
	if err != nil {
		return err
	}
	if err := s.fc.WriteFrame(api.FrameEncrypted, ct); err != nil {
		return err
	}
	d.stats.framesTx.Add(1)
	d.stats.messagesTx.Add(1)
	d.logger.Debug("> " + api.Name(m))
	return nil
}

// read blocks for the next message. Only one goroutine reads at a time.
func (d *Device) read(s *session) (api.Message, error) {
	typ, payload, err := s.fc.ReadFrame()
	if err != nil {
		return nil, err
	}
	if typ != api.FrameEncrypted {
		return nil, fmt.Errorf("%w: plaintext frame after handshake", api.ErrProtocol)
	}
	d.stats.framesRx.Add(1)
	d.stats.touch()
	plain, err := s.cipher.Decrypt(payload)
	if err != nil {
		return nil, err
	}
	m, err := api.DecodeEnvelope(plain)
	if err != nil {
		return nil, err
	}
	d.stats.messagesRx.Add(1)
	d.logger.Debug("< " + api.Name(m))
	return m, nil
}

func (d *Device) current() (*session, *entity.Registry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sess == nil {
		return nil, nil, ErrNotConnected
	}
	return d.sess, d.registry, nil
}

// teardown ends s if it is still the current session. It reports whether
// it did; only the first caller notifies observers.
func (d *Device) teardown(s *session, cause error) bool {
	d.mu.Lock()
	if d.sess != s || s == nil {
		d.mu.Unlock()
		return false
	}
	d.sess = nil
	d.info = nil
	d.registry = nil
	d.listed = false
	d.closed = cause == nil
	d.state = StateDisconnected
	d.mu.Unlock()

	s.fc.Close()
	d.stats.connected.Store(false)
	if cause != nil {
		d.logger.Warn("disconnected", "err", cause)
	} else {
		d.logger.Info("disconnected")
	}
	d.notifyDisconnect(cause)
	return true
}

// abort drops the current session, reporting cause to observers.
func (d *Device) abort(cause error) {
	d.mu.Lock()
	s := d.sess
	d.mu.Unlock()
	d.teardown(s, cause)
}

// Disconnect sends a best-effort DisconnectRequest and closes the session.
// It does nothing when already disconnected.
func (d *Device) Disconnect() error {
	d.mu.Lock()
	s := d.sess
	d.mu.Unlock()
	if s == nil {
		return nil
	}
	if err := d.sendOn(s, &api.DisconnectRequest{}); err != nil {
		d.logger.Debug("disconnect request not sent", "err", err)
	}
	d.teardown(s, nil)
	return nil
}

// Entities lists the device's entities, once per session; later calls
// return the cached set. It reads from the connection itself, so it must
// not run concurrently with RunReadLoop.
func (d *Device) Entities() (map[uint32]entity.Entity, error) {
	s, reg, err := d.current()
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	listed := d.listed
	d.mu.Unlock()
	if listed {
		return reg.All(), nil
	}

	if err := d.sendOn(s, &api.ListEntitiesRequest{}); err != nil {
		d.teardown(s, err)
		return nil, err
	}
	missed := 0
	for {
		m, err := d.read(s)
		if errors.Is(err, api.ErrTimeout) && missed == 0 {
			missed++
			if err := d.ping(s); err != nil {
				d.teardown(s, err)
				return nil, err
			}
			continue
		}
		if err != nil {
			d.teardown(s, err)
			return nil, err
		}
		missed = 0

		switch m := m.(type) {
		case *api.ListEntitiesDoneResponse:
			d.mu.Lock()
			d.listed = true
			d.mu.Unlock()
			d.logger.Debug("entities listed", "count", reg.Len())
			return reg.All(), nil
		case *api.PingRequest:
			if err := d.sendOn(s, &api.PingResponse{}); err != nil {
				d.teardown(s, err)
				return nil, err
			}
		case api.EntityDescriptor:
			if _, err := reg.Register(m); err != nil {
				d.logger.Warn("entity skipped", "err", err)
			}
		default:
			d.logger.Warn("unrecognized entity", "message", api.Name(m))
		}
	}
}

// StreamStates asks the device to push entity states. The device answers
// with the current state of every entity.
func (d *Device) StreamStates() error {
	return d.Send(&api.SubscribeStatesRequest{})
}

// StreamLog subscribes to device log lines at or above level.
func (d *Device) StreamLog(level api.LogLevel, dumpConfig bool) error {
	return d.Send(&api.SubscribeLogsRequest{Level: level, DumpConfig: dumpConfig})
}

// StreamActions subscribes to Home Assistant service calls and events.
func (d *Device) StreamActions() error {
	return d.Send(&api.SubscribeHomeassistantServicesRequest{})
}

// StreamHomeAssistantStates asks the device which Home Assistant states it
// wants; each request arrives as a StateSubscription unit.
func (d *Device) StreamHomeAssistantStates() error {
	return d.Send(&api.SubscribeHomeAssistantStatesRequest{})
}

// SendHomeAssistantState forwards a Home Assistant state to the device.
func (d *Device) SendHomeAssistantState(entityID, attribute, state string) error {
	return d.Send(&api.HomeAssistantStateResponse{EntityID: entityID, Attribute: attribute, State: state})
}

func (d *Device) ping(s *session) error {
	d.stats.pingsSent.Add(1)
	return d.sendOn(s, &api.PingRequest{})
}
