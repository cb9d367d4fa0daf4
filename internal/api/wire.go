package api

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// encoder appends proto3 fields to a buffer. Scalar zero values are omitted.
type encoder struct {
	b []byte
}

func (e *encoder) uint32(num protowire.Number, v uint32) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, uint64(v))
}

func (e *encoder) int32(num protowire.Number, v int32) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, uint64(int64(v)))
}

func (e *encoder) bool(num protowire.Number, v bool) {
	if !v {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, protowire.EncodeBool(v))
}

func (e *encoder) string(num protowire.Number, v string) {
	if v == "" {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, v)
}

func (e *encoder) bytes(num protowire.Number, v []byte) {
	if len(v) == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, v)
}

func (e *encoder) fixed32(num protowire.Number, v uint32) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.Fixed32Type)
	e.b = protowire.AppendFixed32(e.b, v)
}

func (e *encoder) float(num protowire.Number, v float32) {
	e.fixed32(num, math.Float32bits(v))
}

// strings writes a repeated string field; every element is emitted.
func (e *encoder) strings(num protowire.Number, vs []string) {
	for _, v := range vs {
		e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
		e.b = protowire.AppendString(e.b, v)
	}
}

// message writes an embedded message, even when empty.
func (e *encoder) message(num protowire.Number, body []byte) {
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, body)
}

func encodeEnum[T ~int32](e *encoder, num protowire.Number, v T) {
	e.int32(num, int32(v))
}

// encodeEnums writes a packed repeated enum.
func encodeEnums[T ~int32](e *encoder, num protowire.Number, vs []T) {
	if len(vs) == 0 {
		return
	}
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, uint64(int64(v)))
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, packed)
}

// field is one decoded key/value pair.
type field struct {
	num   protowire.Number
	typ   protowire.Type
	value uint64 // varint and fixed32
	raw   []byte // length-delimited
}

// walkFields calls fn for every field in b. Groups and fixed64 values are
// skipped. Unknown field numbers are the callee's business and are
// normally ignored.
func walkFields(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return malformed(0, n)
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.value, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.value = uint64(v)
		case protowire.BytesType:
			f.raw, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return malformed(num, n)
		}
		b = b[n:]

		if typ != protowire.VarintType && typ != protowire.Fixed32Type && typ != protowire.BytesType {
			continue
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func malformed(num protowire.Number, n int) error {
	return fmt.Errorf("%w: field %d: %w", ErrProtocol, num, protowire.ParseError(n))
}

func (f field) want(typ protowire.Type) error {
	if f.typ != typ {
		return fmt.Errorf("%w: field %d has wire type %d, want %d", ErrProtocol, f.num, f.typ, typ)
	}
	return nil
}

func (f field) uint32(dst *uint32) error {
	if err := f.want(protowire.VarintType); err != nil {
		return err
	}
	*dst = uint32(f.value)
	return nil
}

func (f field) int32(dst *int32) error {
	if err := f.want(protowire.VarintType); err != nil {
		return err
	}
	*dst = int32(f.value)
	return nil
}

func (f field) bool(dst *bool) error {
	if err := f.want(protowire.VarintType); err != nil {
		return err
	}
	*dst = protowire.DecodeBool(f.value)
	return nil
}

func (f field) string(dst *string) error {
	if err := f.want(protowire.BytesType); err != nil {
		return err
	}
	*dst = string(f.raw)
	return nil
}

func (f field) bytes(dst *[]byte) error {
	if err := f.want(protowire.BytesType); err != nil {
		return err
	}
	*dst = append([]byte(nil), f.raw...)
	return nil
}

func (f field) appendString(dst *[]string) error {
	if err := f.want(protowire.BytesType); err != nil {
		return err
	}
	*dst = append(*dst, string(f.raw))
	return nil
}

func (f field) fixed32(dst *uint32) error {
	if err := f.want(protowire.Fixed32Type); err != nil {
		return err
	}
	*dst = uint32(f.value)
	return nil
}

func (f field) float(dst *float32) error {
	if err := f.want(protowire.Fixed32Type); err != nil {
		return err
	}
	*dst = math.Float32frombits(uint32(f.value))
	return nil
}

func decodeEnum[T ~int32](f field, dst *T) error {
	if err := f.want(protowire.VarintType); err != nil {
		return err
	}
	*dst = T(int32(f.value))
	return nil
}

// decodeEnums accepts both packed and unpacked encodings.
func decodeEnums[T ~int32](f field, dst *[]T) error {
	switch f.typ {
	case protowire.VarintType:
		*dst = append(*dst, T(int32(f.value)))
		return nil
	case protowire.BytesType:
		b := f.raw
		for len(b) > 0 {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return malformed(f.num, n)
			}
			*dst = append(*dst, T(int32(v)))
			b = b[n:]
		}
		return nil
	default:
		return f.want(protowire.BytesType)
	}
}
