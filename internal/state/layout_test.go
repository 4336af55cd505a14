package state_test

import (
	"reflect"
	"testing"

	"PerpFFI/internal/state"
)

// assertPacked fails when t has implicit padding anywhere in its field tree.
func assertPacked(t *testing.T, typ reflect.Type) {
	t.Helper()
	var end uintptr
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if f.Offset != end {
			t.Errorf("%s.%s: offset %d, want %d (implicit padding)", typ.Name(), f.Name, f.Offset, end)
		}
		end = f.Offset + f.Type.Size()
		switch f.Type.Kind() {
		case reflect.Struct:
			assertPacked(t, f.Type)
		case reflect.Array:
			if f.Type.Elem().Kind() == reflect.Struct {
				assertPacked(t, f.Type.Elem())
			}
		case reflect.Bool, reflect.Pointer, reflect.Slice, reflect.Map, reflect.String, reflect.Interface:
			t.Errorf("%s.%s: kind %s cannot be reinterpreted from bytes", typ.Name(), f.Name, f.Type.Kind())
		}
	}
	if end != typ.Size() {
		t.Errorf("%s: trailing padding %d bytes", typ.Name(), typ.Size()-end)
	}
}

func TestRecordLayouts(t *testing.T) {
	cases := []struct {
		name string
		v    any
		size uintptr
	}{
		{"Order", state.Order{}, state.OrderSize},
		{"PerpPosition", state.PerpPosition{}, state.PerpPositionSize},
		{"SpotPosition", state.SpotPosition{}, state.SpotPositionSize},
		{"User", state.User{}, state.UserSize},
		{"OracleGuardRails", state.OracleGuardRails{}, state.OracleGuardRailsSize},
		{"State", state.State{}, state.StateSize},
		{"HistoricalOracleData", state.HistoricalOracleData{}, state.HistoricalOracleDataSize},
		{"AMM", state.AMM{}, state.AMMSize},
		{"PerpMarket", state.PerpMarket{}, state.PerpMarketSize},
		{"SpotMarket", state.SpotMarket{}, state.SpotMarketSize},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			typ := reflect.TypeOf(tc.v)
			if typ.Size() != tc.size {
				t.Fatalf("size: got %d, want %d", typ.Size(), tc.size)
			}
			if typ.Align() > 8 {
				t.Errorf("align: got %d, want <= 8", typ.Align())
			}
			assertPacked(t, typ)
		})
	}
}

func TestUserFieldOffsets(t *testing.T) {
	typ := reflect.TypeOf(state.User{})
	want := map[string]uintptr{
		"SpotPositions":         96,
		"PerpPositions":         416,
		"Orders":                1184,
		"LastAddPerpLpSharesTs": 4256,
		"NextOrderID":           4328,
		"NextLiquidationID":     4336,
		"Status":                4340,
	}
	for name, off := range want {
		f, ok := typ.FieldByName(name)
		if !ok {
			t.Fatalf("field %s missing", name)
		}
		if f.Offset != off {
			t.Errorf("%s: offset %d, want %d", name, f.Offset, off)
		}
	}
}
