package models

import "testing"

func TestStringArrayScanValue(t *testing.T) {
	cases := []struct {
		name string
		src  interface{}
		want StringArray
	}{
		{"nil", nil, nil},
		{"bytes", []byte(`["a","b"]`), StringArray{"a", "b"}},
		{"string", `["x"]`, StringArray{"x"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var a StringArray
			if err := a.Scan(c.src); err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if len(a) != len(c.want) {
				t.Fatalf("got %v, want %v", a, c.want)
			}
			for i := range a {
				if a[i] != c.want[i] {
					t.Fatalf("got %v, want %v", a, c.want)
				}
			}
		})
	}
}

func TestStringArrayScanInvalidType(t *testing.T) {
	var a StringArray
	if err := a.Scan(42); err == nil {
		t.Fatal("expected error for unsupported src type")
	}
}

func TestStringArrayValueNil(t *testing.T) {
	var a StringArray
	v, err := a.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != "[]" {
		t.Fatalf("got %v, want []", v)
	}
}

func TestFloatArrayScanValue(t *testing.T) {
	var a FloatArray
	if err := a.Scan([]byte(`[0.1,0.9]`)); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(a) != 2 || a[0] != 0.1 || a[1] != 0.9 {
		t.Fatalf("unexpected result: %v", a)
	}
}

func TestJSONMapScanEmptyString(t *testing.T) {
	var m JSONMap
	if err := m.Scan(""); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil map for empty string, got %v", m)
	}
}

func TestJSONMapValueNil(t *testing.T) {
	var m JSONMap
	v, err := m.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != "{}" {
		t.Fatalf("got %v, want {}", v)
	}
}
