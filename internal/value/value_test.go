package value

import (
	"math"
	"testing"
)

func TestAccessors(t *testing.T) {
	v := New("42", "3.5", "true")
	if n, err := v.Int(); err != nil || n != 42 {
		t.Fatalf("Int() = %d, %v", n, err)
	}
	if !New("1").Bool() || !New("TRUE").Bool() || New("0").Bool() {
		t.Fatal("Bool() mismatched expectations")
	}
	if f, err := v.Float(); err != nil {
		t.Fatalf("Float() error: %v", err)
	} else if f != 42 {
		t.Fatalf("Float() = %v, want 42", f)
	}
}

func TestInt_Hex(t *testing.T) {
	n, err := New("0xFF").Int()
	if err != nil || n != 255 {
		t.Fatalf("Int() = %d, %v, want 255", n, err)
	}
}

func TestVec(t *testing.T) {
	v := New("1", "2", "3")
	got, err := v.Vec(3)
	if err != nil {
		t.Fatalf("Vec(3) error: %v", err)
	}
	want := []float64{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Vec(3)[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := New("1", "2").Vec(3); err == nil {
		t.Fatal("expected error for insufficient pieces")
	}
	if _, err := New("1", "2").Vec(5); err == nil {
		t.Fatal("expected error for out-of-range n")
	}
}

func TestColor(t *testing.T) {
	t.Run("six digit", func(t *testing.T) {
		c, err := New("#FF0000").Color()
		if err != nil {
			t.Fatalf("Color() error: %v", err)
		}
		if math.Abs(c.R-1.0) > 1e-9 || c.G != 0 || c.B != 0 {
			t.Fatalf("Color() = %+v", c)
		}
		if c.Multiplier != 1.0 {
			t.Fatalf("Multiplier default = %v, want 1", c.Multiplier)
		}
	})

	t.Run("three digit with multiplier", func(t *testing.T) {
		c, err := New("#F00", "0.5").Color()
		if err != nil {
			t.Fatalf("Color() error: %v", err)
		}
		if math.Abs(c.R-1.0) > 1e-9 || c.Multiplier != 0.5 {
			t.Fatalf("Color() = %+v", c)
		}
	})

	t.Run("not a color", func(t *testing.T) {
		if _, err := New("red").Color(); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestAppend(t *testing.T) {
	v := New("a").Append("b", "c")
	if v.String() != "a,b,c" {
		t.Fatalf("Append result = %q", v.String())
	}
	if v.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", v.Len())
	}
}
