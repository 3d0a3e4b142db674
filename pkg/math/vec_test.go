package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func approx(a, b float32) bool {
	return math32.Abs(a-b) < 1e-5
}

func approxVec(a, b Vec3) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Z, b.Z)
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Length(t *testing.T) {
	v := Vec3{2, 3, 6}
	if got := v.Length(); got != 7 {
		t.Errorf("Vec3.Length() = %v, want 7", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{3, 4, 12}.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}

	if z := (Vec3{}).Normalize(); z != (Vec3{}) {
		t.Errorf("zero vector should stay zero, got %v", z)
	}
}

func TestVec3Angle(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		want float32
	}{
		{"parallel", Up, Vec3{0, 0, 5}, 0},
		{"perpendicular", Up, Vec3{1, 0, 0}, math32.Pi / 2},
		{"opposite", Up, Vec3{0, 0, -1}, math32.Pi},
		{"zero length", Up, Vec3{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Angle(tt.b); !approx(got, tt.want) {
				t.Errorf("Angle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3ArrayRoundTrip(t *testing.T) {
	v := Vec3{1.5, -2.25, 3}
	if got := Vec3FromArray(v.Array()); got != v {
		t.Errorf("Vec3FromArray(Array()) = %v, want %v", got, v)
	}
}

func TestRadiansDegrees(t *testing.T) {
	if got := Radians(180); !approx(got, math32.Pi) {
		t.Errorf("Radians(180) = %v", got)
	}
	if got := Degrees(math32.Pi / 2); !approx(got, 90) {
		t.Errorf("Degrees(pi/2) = %v", got)
	}
}
