package sparse

import (
	"testing"
)

func TestMatrixSetAndAdd(t *testing.T) {
	M := NewIntMatrix(10, 10, DefaultNullValue)
	M.Set(2, 3, 4711)
	if v := M.Value(2, 3); v != 4711 {
		t.Errorf("Expected M(2,3) to be 4711, is %d", v)
	}
	M.Add(2, 3, 123)
	if a, b := M.Values(2, 3); a != 4711 || b != 123 {
		t.Errorf("Expected M(2,3) to be (4711,123), is (%d,%d)", a, b)
	}
	if M.ValueCount() != 1 {
		t.Errorf("Expected value count to be 1, is %d", M.ValueCount())
	}
	if v := M.Value(9, 9); v != M.NullValue() {
		t.Errorf("Expected M(9,9) to be null, is %d", v)
	}
	M.Set(2, 3, 1)
	if a, b := M.Values(2, 3); a != 1 || b != M.NullValue() {
		t.Errorf("Expected Set to replace pair, is (%d,%d)", a, b)
	}
}

func TestMatrixOrder(t *testing.T) {
	M := NewIntMatrix(5, 5, -1)
	M.Set(4, 4, 44)
	M.Set(0, 1, 1)
	M.Set(2, 0, 20)
	M.Set(0, 0, 0)
	M.Set(2, 3, 23)
	var seen []int32
	M.Each(func(i, j int, a, b int32) {
		seen = append(seen, a)
		if b != -1 {
			t.Errorf("Expected no second value at (%d,%d), is %d", i, j, b)
		}
	})
	expected := []int32{0, 1, 20, 23, 44}
	if len(seen) != len(expected) {
		t.Fatalf("Expected %d values, have %d", len(expected), len(seen))
	}
	for k := range expected {
		if seen[k] != expected[k] {
			t.Errorf("Expected value #%d to be %d, is %d", k, expected[k], seen[k])
		}
	}
	if v := M.Value(2, 3); v != 23 {
		t.Errorf("Expected M(2,3) to be 23, is %d", v)
	}
}

func TestMatrixOutOfRange(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected setting a value out of range to panic")
		}
	}()
	M := NewIntMatrix(2, 2, -1)
	M.Set(2, 0, 1)
}
