package api

// RawMessage carries a message id that has no modeled type (camera, media
// player, bluetooth proxy, voice assistant and the like). The body is kept
// verbatim and re-encodes byte for byte.
type RawMessage struct {
	Type uint16
	Body []byte
}

func (m *RawMessage) MessageType() uint16 { return m.Type }

func (m *RawMessage) marshal(e *encoder) {
	e.b = append(e.b, m.Body...)
}

func (m *RawMessage) unmarshal(b []byte) error {
	m.Body = append([]byte(nil), b...)
	return nil
}
