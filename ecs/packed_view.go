package ecs

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/rotisserie/eris"
)

// PackedView is a window onto one row of a packed archetype's buffer. The
// archetype repositions a single logical view for every access instead of
// allocating per entity; each repositioning invalidates every view handed
// out before it. Reading or writing through an invalidated view panics, so a
// view must not be kept beyond the callback (or the GetPackedFor call) that
// produced it.
//
// Writes use native fixed-width arithmetic: overflow wraps.
type PackedView struct {
	arch  *PackedArchetype
	base  int
	epoch uint64
}

// Valid reports whether the view still points at the row it was positioned on
func (v PackedView) Valid() bool {
	return v.arch != nil && !v.arch.closed && v.arch.epoch == v.epoch
}

func (v PackedView) Layout() *PackedLayout {
	return v.arch.layout
}

// bytes returns the field's byte window after checking the view and the field kind
func (v PackedView) bytes(field int, kind FieldKind) []byte {
	if v.arch == nil {
		fail(eris.Wrap(ErrStaleView, "zero view"))
	}
	if v.arch.closed {
		fail(eris.Wrapf(ErrClosed, "packed archetype %d", v.arch.id))
	}
	if v.arch.epoch != v.epoch {
		fail(eris.Wrapf(ErrStaleView, "packed archetype %d", v.arch.id))
	}
	f := v.arch.layout.fields[field]
	if f.Kind != kind {
		fail(eris.Errorf("field %s is %s, accessed as %s", f.Name, f.Kind, kind))
	}
	start := v.base + f.Offset
	return v.arch.buf[start : start+kind.Size()]
}

func (v PackedView) Int8(field int) int8 {
	return int8(v.bytes(field, KindInt8)[0])
}

func (v PackedView) SetInt8(field int, value int8) {
	v.bytes(field, KindInt8)[0] = byte(value)
}

func (v PackedView) Uint8(field int) uint8 {
	return v.bytes(field, KindUint8)[0]
}

func (v PackedView) SetUint8(field int, value uint8) {
	v.bytes(field, KindUint8)[0] = value
}

func (v PackedView) Bool(field int) bool {
	return v.bytes(field, KindBool)[0] != 0
}

func (v PackedView) SetBool(field int, value bool) {
	var b byte
	if value {
		b = 1
	}
	v.bytes(field, KindBool)[0] = b
}

func (v PackedView) Int16(field int) int16 {
	return int16(binary.LittleEndian.Uint16(v.bytes(field, KindInt16)))
}

func (v PackedView) SetInt16(field int, value int16) {
	binary.LittleEndian.PutUint16(v.bytes(field, KindInt16), uint16(value))
}

func (v PackedView) Uint16(field int) uint16 {
	return binary.LittleEndian.Uint16(v.bytes(field, KindUint16))
}

func (v PackedView) SetUint16(field int, value uint16) {
	binary.LittleEndian.PutUint16(v.bytes(field, KindUint16), value)
}

func (v PackedView) Int32(field int) int32 {
	return int32(binary.LittleEndian.Uint32(v.bytes(field, KindInt32)))
}

func (v PackedView) SetInt32(field int, value int32) {
	binary.LittleEndian.PutUint32(v.bytes(field, KindInt32), uint32(value))
}

func (v PackedView) Uint32(field int) uint32 {
	return binary.LittleEndian.Uint32(v.bytes(field, KindUint32))
}

func (v PackedView) SetUint32(field int, value uint32) {
	binary.LittleEndian.PutUint32(v.bytes(field, KindUint32), value)
}

func (v PackedView) Int64(field int) int64 {
	return int64(binary.LittleEndian.Uint64(v.bytes(field, KindInt64)))
}

func (v PackedView) SetInt64(field int, value int64) {
	binary.LittleEndian.PutUint64(v.bytes(field, KindInt64), uint64(value))
}

func (v PackedView) Uint64(field int) uint64 {
	return binary.LittleEndian.Uint64(v.bytes(field, KindUint64))
}

func (v PackedView) SetUint64(field int, value uint64) {
	binary.LittleEndian.PutUint64(v.bytes(field, KindUint64), value)
}

func (v PackedView) Float32(field int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(v.bytes(field, KindFloat32)))
}

func (v PackedView) SetFloat32(field int, value float32) {
	binary.LittleEndian.PutUint32(v.bytes(field, KindFloat32), math.Float32bits(value))
}

func (v PackedView) Float64(field int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(v.bytes(field, KindFloat64)))
}

func (v PackedView) SetFloat64(field int, value float64) {
	binary.LittleEndian.PutUint64(v.bytes(field, KindFloat64), math.Float64bits(value))
}

// AddInt32 adds delta to an int32 field in place, wrapping on overflow
func (v PackedView) AddInt32(field int, delta int32) {
	b := v.bytes(field, KindInt32)
	binary.LittleEndian.PutUint32(b, binary.LittleEndian.Uint32(b)+uint32(delta))
}

// store copies every field of value, a struct of the view's packed type, into the row
func (v PackedView) store(value reflect.Value) {
	for i, f := range v.arch.layout.fields {
		fv := value.Field(i)
		switch f.Kind {
		case KindInt8:
			v.SetInt8(i, int8(fv.Int()))
		case KindInt16:
			v.SetInt16(i, int16(fv.Int()))
		case KindInt32:
			v.SetInt32(i, int32(fv.Int()))
		case KindInt64:
			v.SetInt64(i, fv.Int())
		case KindUint8:
			v.SetUint8(i, uint8(fv.Uint()))
		case KindUint16:
			v.SetUint16(i, uint16(fv.Uint()))
		case KindUint32:
			v.SetUint32(i, uint32(fv.Uint()))
		case KindUint64:
			v.SetUint64(i, fv.Uint())
		case KindFloat32:
			v.SetFloat32(i, float32(fv.Float()))
		case KindFloat64:
			v.SetFloat64(i, fv.Float())
		case KindBool:
			v.SetBool(i, fv.Bool())
		}
	}
}
