package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"esphome-go/internal/api"
	"esphome-go/internal/device"
	"esphome-go/internal/entity"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetDevice(t *testing.T) {
	s := newTestStore(t)

	dev := &Device{
		Address:        "kitchen.local:6053",
		Name:           "kitchen",
		MACAddress:     "AA:BB:CC:DD:EE:FF",
		Model:          "esp32dev",
		ESPHomeVersion: "2024.6.0",
		FirstSeen:      time.Now().Truncate(time.Millisecond).UTC(),
		LastSeen:       time.Now().Truncate(time.Millisecond).UTC(),
		Online:         true,
		Entities: []Entity{
			{Key: 1, Kind: "switch", ObjectID: "relay", Name: "Relay"},
		},
	}

	if err := s.SaveDevice(dev); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetDevice(dev.Address)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(dev, got); diff != "" {
		t.Errorf("GetDevice mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveDeviceRequiresAddress(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveDevice(&Device{Name: "nameless"}); err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestDeleteDevice(t *testing.T) {
	s := newTestStore(t)

	dev := &Device{Address: "10.0.0.5:6053", Name: "porch"}
	if err := s.SaveDevice(dev); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteDevice(dev.Address); err != nil {
		t.Fatal(err)
	}

	_, err := s.GetDevice(dev.Address)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListDevices(t *testing.T) {
	s := newTestStore(t)

	for _, addr := range []string{"10.0.0.3:6053", "10.0.0.1:6053", "10.0.0.2:6053"} {
		if err := s.SaveDevice(&Device{Address: addr}); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListDevices()
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, d := range list {
		got = append(got, d.Address)
	}
	want := []string{"10.0.0.1:6053", "10.0.0.2:6053", "10.0.0.3:6053"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListDevices (-want +got):\n%s", diff)
	}
}

func TestGetDeviceNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetDevice("nowhere:6053")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateDevice(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveDevice(&Device{Address: "a:6053", Name: "old"}); err != nil {
		t.Fatal(err)
	}
	err := s.UpdateDevice("a:6053", func(dev *Device) error {
		dev.Name = "new"
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetDevice("a:6053")
	if got.Name != "new" {
		t.Errorf("name = %q, want new", got.Name)
	}

	boom := errors.New("boom")
	err = s.UpdateDevice("a:6053", func(dev *Device) error {
		dev.Name = "discarded"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	got, _ = s.GetDevice("a:6053")
	if got.Name != "new" {
		t.Errorf("failed update was saved: name = %q", got.Name)
	}

	err = s.UpdateDevice("missing:6053", func(*Device) error { return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func testEntities(t *testing.T) []entity.Entity {
	t.Helper()
	descs := []api.EntityDescriptor{
		&api.ListEntitiesSensorResponse{
			EntityInfo:        api.EntityInfo{ObjectID: "temperature", Key: 10, Name: "Temperature"},
			UnitOfMeasurement: "°C",
			DeviceClass:       "temperature",
		},
		&api.ListEntitiesSwitchResponse{
			EntityInfo: api.EntityInfo{ObjectID: "relay", Key: 20, Name: "Relay", EntityCategory: api.EntityCategoryConfig},
		},
	}
	var out []entity.Entity
	for _, d := range descs {
		e, err := entity.New(d, nil)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, e)
	}
	return out
}

func TestRecordSession(t *testing.T) {
	s := newTestStore(t)
	first := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)
	info := device.Info{
		Name:            "kitchen",
		MACAddress:      "AA:BB:CC:DD:EE:FF",
		ESPHomeVersion:  "2024.6.0",
		APIVersionMajor: 1,
		APIVersionMinor: 9,
	}

	if err := RecordSession(s, "kitchen:6053", info, testEntities(t), first); err != nil {
		t.Fatal(err)
	}
	if err := RecordDisconnect(s, "kitchen:6053", errors.New("connection reset by peer"), first); err != nil {
		t.Fatal(err)
	}
	dev, err := s.GetDevice("kitchen:6053")
	if err != nil {
		t.Fatal(err)
	}
	if dev.Online || dev.LastError != "connection reset by peer" {
		t.Errorf("after disconnect: online=%v last_error=%q", dev.Online, dev.LastError)
	}

	info.ESPHomeVersion = "2024.7.0"
	if err := RecordSession(s, "kitchen:6053", info, testEntities(t), later); err != nil {
		t.Fatal(err)
	}
	dev, err = s.GetDevice("kitchen:6053")
	if err != nil {
		t.Fatal(err)
	}

	want := &Device{
		Address:        "kitchen:6053",
		Name:           "kitchen",
		MACAddress:     "AA:BB:CC:DD:EE:FF",
		ESPHomeVersion: "2024.7.0",
		APIVersion:     "1.9",
		FirstSeen:      first,
		LastSeen:       later,
		Online:         true,
		Entities: []Entity{
			{Key: 10, Kind: "sensor", ObjectID: "temperature", Name: "Temperature", DeviceClass: "temperature", Unit: "°C"},
			{Key: 20, Kind: "switch", ObjectID: "relay", Name: "Relay", Category: "config"},
		},
	}
	if diff := cmp.Diff(want, dev); diff != "" {
		t.Errorf("device record (-want +got):\n%s", diff)
	}
}

func TestRecordDisconnectUnknownDevice(t *testing.T) {
	s := newTestStore(t)
	if err := RecordDisconnect(s, "never-seen:6053", nil, time.Now()); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}
