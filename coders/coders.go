// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package coders supports sizing and persisting pipeline elements.
//
// Scalar types use compact binary encodings. Everything else falls
// back to a deterministic JSON encoding, so any exported-field struct
// can serve as an element type without registration.
package coders

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"

	"github.com/go-json-experiment/json"
	"golang.org/x/exp/constraints"
)

// Coder represents encoding and decoding a specific type.
type Coder[E any] interface {
	Encode(enc *Encoder, v E)
	Decode(dec *Decoder) E
}

// Encoder accumulates an encoded byte buffer.
type Encoder struct {
	data []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Data returns the encoded bytes so far.
func (e *Encoder) Data() []byte {
	return e.data
}

func (e *Encoder) Bool(v bool) {
	if v {
		e.data = append(e.data, 1)
	} else {
		e.data = append(e.data, 0)
	}
}

func (e *Encoder) Varint(v int64) {
	e.data = binary.AppendVarint(e.data, v)
}

func (e *Encoder) Uvarint(v uint64) {
	e.data = binary.AppendUvarint(e.data, v)
}

func (e *Encoder) Double(v float64) {
	e.data = binary.BigEndian.AppendUint64(e.data, math.Float64bits(v))
}

// Bytes encodes b as a uvarint length followed by the raw bytes.
func (e *Encoder) Bytes(b []byte) {
	e.Uvarint(uint64(len(b)))
	e.data = append(e.data, b...)
}

func (e *Encoder) StringUtf8(s string) {
	e.Uvarint(uint64(len(s)))
	e.data = append(e.data, s...)
}

// Decoder consumes a byte buffer produced by an Encoder. Decode
// methods panic when the buffer is truncated or malformed.
type Decoder struct {
	data []byte
}

// NewDecoder returns a Decoder over data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

func (d *Decoder) Bool() bool {
	if len(d.data) == 0 {
		panic("decoding bool: no data")
	}
	v := d.data[0]
	d.data = d.data[1:]
	return v != 0
}

func (d *Decoder) Varint() int64 {
	v, n := binary.Varint(d.data)
	if n <= 0 {
		panic(fmt.Sprintf("decoding varint: invalid buffer of %d bytes", len(d.data)))
	}
	d.data = d.data[n:]
	return v
}

func (d *Decoder) Uvarint() uint64 {
	v, n := binary.Uvarint(d.data)
	if n <= 0 {
		panic(fmt.Sprintf("decoding uvarint: invalid buffer of %d bytes", len(d.data)))
	}
	d.data = d.data[n:]
	return v
}

func (d *Decoder) Double() float64 {
	if len(d.data) < 8 {
		panic(fmt.Sprintf("decoding double: have %d bytes, want 8", len(d.data)))
	}
	v := math.Float64frombits(binary.BigEndian.Uint64(d.data))
	d.data = d.data[8:]
	return v
}

func (d *Decoder) Bytes() []byte {
	n := d.Uvarint()
	if uint64(len(d.data)) < n {
		panic(fmt.Sprintf("decoding bytes: have %d bytes, want %d", len(d.data), n))
	}
	b := d.data[:n:n]
	d.data = d.data[n:]
	return b
}

func (d *Decoder) StringUtf8() string {
	return string(d.Bytes())
}

type boolCoder struct{}

func (boolCoder) Encode(e *Encoder, v bool) { e.Bool(v) }
func (boolCoder) Decode(d *Decoder) bool    { return d.Bool() }

type varintCoder[T constraints.Signed] struct{}

func (varintCoder[T]) Encode(e *Encoder, v T) { e.Varint(int64(v)) }
func (varintCoder[T]) Decode(d *Decoder) T    { return T(d.Varint()) }

type uvarintCoder[T constraints.Unsigned] struct{}

func (uvarintCoder[T]) Encode(e *Encoder, v T) { e.Uvarint(uint64(v)) }
func (uvarintCoder[T]) Decode(d *Decoder) T    { return T(d.Uvarint()) }

type doubleCoder[T constraints.Float] struct{}

func (doubleCoder[T]) Encode(e *Encoder, v T) { e.Double(float64(v)) }
func (doubleCoder[T]) Decode(d *Decoder) T    { return T(d.Double()) }

type complexCoder[T ~complex64 | ~complex128] struct{}

func (complexCoder[T]) Encode(e *Encoder, v T) {
	c := complex128(v)
	e.Double(real(c))
	e.Double(imag(c))
}

func (complexCoder[T]) Decode(d *Decoder) T {
	re := d.Double()
	im := d.Double()
	return T(complex(re, im))
}

type stringCoder struct{}

func (stringCoder) Encode(e *Encoder, v string) { e.StringUtf8(v) }
func (stringCoder) Decode(d *Decoder) string    { return d.StringUtf8() }

type bytesCoder struct{}

func (bytesCoder) Encode(e *Encoder, v []byte) { e.Bytes(v) }
func (bytesCoder) Decode(d *Decoder) []byte    { return d.Bytes() }

// jsonCoder handles every type without a dedicated scalar coder.
// Deterministic marshaling keeps sizes stable across runs.
type jsonCoder[E any] struct{}

func (jsonCoder[E]) Encode(e *Encoder, v E) {
	b, err := json.Marshal(v, json.Deterministic(true))
	if err != nil {
		panic(fmt.Sprintf("encoding %T: %v", v, err))
	}
	e.Bytes(b)
}

func (jsonCoder[E]) Decode(d *Decoder) E {
	var v E
	if err := json.Unmarshal(d.Bytes(), &v); err != nil {
		panic(fmt.Sprintf("decoding %T: %v", v, err))
	}
	return v
}

// Encodable reports whether values of the type can be encoded by the
// coder MakeCoder returns. Types reaching funcs, channels, unsafe
// pointers, or interfaces cannot.
func Encodable(rt reflect.Type) bool {
	return encodable(rt, map[reflect.Type]bool{})
}

func encodable(rt reflect.Type, seen map[reflect.Type]bool) bool {
	if seen[rt] {
		return true
	}
	seen[rt] = true
	switch rt.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Interface:
		return false
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return encodable(rt.Elem(), seen)
	case reflect.Map:
		return encodable(rt.Key(), seen) && encodable(rt.Elem(), seen)
	case reflect.Struct:
		for i := 0; i < rt.NumField(); i++ {
			if !encodable(rt.Field(i).Type, seen) {
				return false
			}
		}
		return true
	}
	return true
}

// MakeCoder returns a Coder for the given type.
//
// The exact type comparisons avoid mistaking named types for their
// underlying kind, so a named type with custom JSON marshaling is
// still handled by the JSON fallback.
func MakeCoder[E any]() Coder[E] {
	var c any
	switch reflect.TypeFor[E]() {
	case reflect.TypeFor[bool]():
		c = boolCoder{}
	case reflect.TypeFor[int]():
		c = varintCoder[int]{}
	case reflect.TypeFor[int8]():
		c = varintCoder[int8]{}
	case reflect.TypeFor[int16]():
		c = varintCoder[int16]{}
	case reflect.TypeFor[int32]():
		c = varintCoder[int32]{}
	case reflect.TypeFor[int64]():
		c = varintCoder[int64]{}
	case reflect.TypeFor[uint]():
		c = uvarintCoder[uint]{}
	case reflect.TypeFor[uint8]():
		c = uvarintCoder[uint8]{}
	case reflect.TypeFor[uint16]():
		c = uvarintCoder[uint16]{}
	case reflect.TypeFor[uint32]():
		c = uvarintCoder[uint32]{}
	case reflect.TypeFor[uint64]():
		c = uvarintCoder[uint64]{}
	case reflect.TypeFor[float32]():
		c = doubleCoder[float32]{}
	case reflect.TypeFor[float64]():
		c = doubleCoder[float64]{}
	case reflect.TypeFor[complex64]():
		c = complexCoder[complex64]{}
	case reflect.TypeFor[complex128]():
		c = complexCoder[complex128]{}
	case reflect.TypeFor[string]():
		c = stringCoder{}
	case reflect.TypeFor[[]byte]():
		c = bytesCoder{}
	}
	if c != nil {
		return c.(Coder[E])
	}
	return jsonCoder[E]{}
}
