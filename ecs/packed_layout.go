package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// FieldKind is the fixed-width encoding of one packed field
type FieldKind uint8

const (
	KindInt8 FieldKind = iota + 1
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
)

// Size returns the number of bytes a field of this kind occupies
func (k FieldKind) Size() int {
	switch k {
	case KindInt8, KindUint8, KindBool:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	}
	return 0
}

func (k FieldKind) String() string {
	switch k {
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	}
	return "invalid"
}

var kindsByReflect = map[reflect.Kind]FieldKind{
	reflect.Int8:    KindInt8,
	reflect.Int16:   KindInt16,
	reflect.Int32:   KindInt32,
	reflect.Int64:   KindInt64,
	reflect.Uint8:   KindUint8,
	reflect.Uint16:  KindUint16,
	reflect.Uint32:  KindUint32,
	reflect.Uint64:  KindUint64,
	reflect.Float32: KindFloat32,
	reflect.Float64: KindFloat64,
	reflect.Bool:    KindBool,
}

// PackedField is one named field of a packed row
type PackedField struct {
	Name   string
	Kind   FieldKind
	Offset int
}

// PackedLayout describes how one packed component is laid out inside a row.
// Fields are stored back to back with no padding.
type PackedLayout struct {
	fields  []PackedField
	rowSize int
}

// NewPackedLayout builds a layout from (name, kind) pairs in order
func NewPackedLayout(fields ...PackedField) *PackedLayout {
	l := &PackedLayout{fields: make([]PackedField, len(fields))}
	for i, f := range fields {
		f.Offset = l.rowSize
		l.fields[i] = f
		l.rowSize += f.Kind.Size()
	}
	return l
}

// LayoutOf derives a packed layout from a struct type. Only exported and
// unexported fields of fixed-width numeric kinds or bool are accepted.
func LayoutOf(t reflect.Type) (*PackedLayout, error) {
	if t.Kind() != reflect.Struct {
		return nil, eris.Wrapf(ErrInvalidPackedType, "%s is not a struct", t)
	}
	if t.NumField() == 0 {
		return nil, eris.Wrapf(ErrInvalidPackedType, "%s has no fields", t)
	}

	fields := make([]PackedField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		kind, ok := kindsByReflect[f.Type.Kind()]
		if !ok {
			return nil, eris.Wrapf(ErrInvalidPackedType, "field %s.%s has kind %s", t, f.Name, f.Type.Kind())
		}
		fields = append(fields, PackedField{Name: f.Name, Kind: kind})
	}
	return NewPackedLayout(fields...), nil
}

// RowSize is the number of bytes per row
func (l *PackedLayout) RowSize() int {
	return l.rowSize
}

func (l *PackedLayout) Fields() []PackedField {
	return l.fields
}

// Field returns the position of the named field, or -1
func (l *PackedLayout) Field(name string) int {
	for i, f := range l.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}
