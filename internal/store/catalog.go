package store

import (
	"errors"
	"fmt"
	"time"

	"esphome-go/internal/device"
	"esphome-go/internal/entity"
)

// catalogue converts a session's entities into catalogue entries, keeping
// their order.
func catalogue(ents []entity.Entity) []Entity {
	out := make([]Entity, 0, len(ents))
	for _, e := range ents {
		info := e.Info()
		rec := Entity{
			Key:               info.Key,
			Kind:              string(e.Kind()),
			ObjectID:          info.ObjectID,
			Name:              info.Name,
			UniqueID:          info.UniqueID,
			Icon:              info.Icon,
			DisabledByDefault: info.DisabledByDefault,
		}
		if info.EntityCategory != 0 {
			rec.Category = info.EntityCategory.String()
		}
		if dc, ok := e.(interface{ DeviceClass() string }); ok {
			rec.DeviceClass = dc.DeviceClass()
		}
		if u, ok := e.(interface{ UnitOfMeasurement() string }); ok {
			rec.Unit = u.UnitOfMeasurement()
		}
		switch e := e.(type) {
		case *entity.Light:
			for _, m := range e.SupportedColorModes() {
				rec.ColorModes = append(rec.ColorModes, entity.ColorModeName(m))
			}
		case *entity.Select:
			rec.Options = e.Options()
		case *entity.Number:
			rec.Min, rec.Max = e.Range()
			rec.Step = e.Step()
		}
		out = append(out, rec)
	}
	return out
}

// NewRecord builds the record of a ready session without saving it.
func NewRecord(address string, info device.Info, ents []entity.Entity, now time.Time) *Device {
	dev := &Device{Address: address, FirstSeen: now}
	fill(dev, info, ents, now)
	return dev
}

func fill(dev *Device, info device.Info, ents []entity.Entity, now time.Time) {
	dev.Name = info.Name
	dev.FriendlyName = info.FriendlyName
	dev.MACAddress = info.MACAddress
	dev.Manufacturer = info.Manufacturer
	dev.Model = info.Model
	dev.ESPHomeVersion = info.ESPHomeVersion
	dev.CompilationTime = info.CompilationTime
	dev.ProjectName = info.ProjectName
	dev.ProjectVersion = info.ProjectVersion
	dev.APIVersion = fmt.Sprintf("%d.%d", info.APIVersionMajor, info.APIVersionMinor)
	dev.Entities = catalogue(ents)
	dev.LastSeen = now
	dev.Online = true
	dev.LastError = ""
}

// RecordSession saves what a ready session learned about a device: its
// metadata and entity catalogue. FirstSeen is kept across sessions.
func RecordSession(s Store, address string, info device.Info, ents []entity.Entity, now time.Time) error {
	err := s.UpdateDevice(address, func(dev *Device) error {
		fill(dev, info, ents, now)
		return nil
	})
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.SaveDevice(NewRecord(address, info, ents, now))
}

// RecordDisconnect marks a cached device offline. cause may be nil after an
// orderly disconnect. Unknown addresses are ignored.
func RecordDisconnect(s Store, address string, cause error, now time.Time) error {
	err := s.UpdateDevice(address, func(dev *Device) error {
		dev.Online = false
		dev.LastSeen = now
		dev.LastError = ""
		if cause != nil {
			dev.LastError = cause.Error()
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
