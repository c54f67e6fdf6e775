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

package coders

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func roundTripMakeCoder[T any](v T) struct {
	val   any
	coder func(v any) any
} {
	return struct {
		val   any
		coder func(v any) any
	}{
		val: v,
		coder: func(v any) any {
			c := MakeCoder[T]()
			e := NewEncoder()
			c.Encode(e, v.(T))
			d := NewDecoder(e.Data())
			return c.Decode(d)
		},
	}
}

func TestMakeCoder(t *testing.T) {
	tests := []struct {
		val   any
		coder func(any) any
	}{
		roundTripMakeCoder(bool(false)),
		roundTripMakeCoder(bool(true)),
		roundTripMakeCoder(int8(3)),
		roundTripMakeCoder(int16(4)),
		roundTripMakeCoder(int32(5)),
		roundTripMakeCoder(int64(6)),
		roundTripMakeCoder(uint8(7)),
		roundTripMakeCoder(uint16(8)),
		roundTripMakeCoder(uint32(9)),
		roundTripMakeCoder(uint64(10)),
		roundTripMakeCoder(uint(11)),
		roundTripMakeCoder(int(12)),
		roundTripMakeCoder(int(-12)),
		roundTripMakeCoder(float32(13)),
		roundTripMakeCoder(float64(14.5)),
		roundTripMakeCoder(complex64(15 + 15i)),
		roundTripMakeCoder(complex128(16 + 16i)),
		roundTripMakeCoder("squeamish ossifrage"),
		roundTripMakeCoder([]byte{8, 3, 7, 4, 6, 0, 9}),

		// JSON fallback coder tests.
		roundTripMakeCoder([]int{1, 2, 3}),
		roundTripMakeCoder(map[string]int{"a": 1, "b": 2}),
		roundTripMakeCoder(struct{ T time.Time }{T: time.Date(2024, 5, 4, 3, 2, 1, 0, time.UTC)}),
		roundTripMakeCoder(struct{ S string }{S: "pajamas"}),
		roundTripMakeCoder(struct{ I int }{I: -42}),
		roundTripMakeCoder(struct {
			K string
			V float64
		}{K: "mean", V: 27.5}),
	}
	for _, test := range tests {
		t.Run(reflect.TypeOf(test.val).String(), func(t *testing.T) {
			got, want := test.coder(test.val), test.val
			if d := cmp.Diff(want, got); d != "" {
				t.Errorf("MakeCoder[%T]() round trip failed. got %v want %v, diff (-want, +got):\n%v", test.val, got, want, d)
			}
		})
	}
}

func TestEncodable(t *testing.T) {
	type linked struct {
		Val  int
		Next *linked
	}
	tests := []struct {
		rt   reflect.Type
		want bool
	}{
		{reflect.TypeFor[int](), true},
		{reflect.TypeFor[[]string](), true},
		{reflect.TypeFor[map[string][]float64](), true},
		{reflect.TypeFor[linked](), true},
		{reflect.TypeFor[func(int) bool](), false},
		{reflect.TypeFor[chan int](), false},
		{reflect.TypeFor[struct{ F func() }](), false},
		{reflect.TypeFor[[]func()](), false},
		{reflect.TypeFor[any](), false},
	}
	for _, test := range tests {
		if got := Encodable(test.rt); got != test.want {
			t.Errorf("Encodable(%v) got %v, want %v", test.rt, got, test.want)
		}
	}
}

func TestDecoder_truncated(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("decoding a truncated buffer did not panic")
		}
	}()
	d := NewDecoder([]byte{0xff})
	d.Double()
}
