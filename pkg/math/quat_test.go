package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
	if !q.IsIdentity() {
		t.Error("IsIdentity() should be true for identity")
	}
}

func TestQuatNormalize(t *testing.T) {
	n := Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize()
	length := math32.Sqrt(n.Dot(n))
	if math32.Abs(length-1.0) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatFromAxisAngleZero(t *testing.T) {
	// A zero angle about any axis must be exactly the identity.
	q := QuatFromAxisAngle(Up, 0)
	if !q.IsIdentity() {
		t.Errorf("zero rotation should be identity, got %v", q)
	}
}

func TestQuatRotate(t *testing.T) {
	// 90 degrees around Z maps +X onto +Y
	q := QuatFromAxisAngle(Up, math32.Pi/2)
	got := q.Rotate(Vec3{1, 0, 0})
	if !approxVec(got, Vec3{0, 1, 0}) {
		t.Errorf("Rotate() = %v, want (0,1,0)", got)
	}
}

func TestQuatMulLocalFrame(t *testing.T) {
	// Tilt Z onto X, then spin about the tilted (local) Z.
	tilt := QuatFromAxisAngle(Vec3{0, 1, 0}, math32.Pi/2)
	spin := QuatFromAxisAngle(Up, math32.Pi/3)
	q := tilt.Mul(spin)

	// The local up axis is unaffected by the spin.
	if got := q.Rotate(Up); !approxVec(got, Vec3{1, 0, 0}) {
		t.Errorf("local up = %v, want (1,0,0)", got)
	}
}

func TestQuatEulerRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float32
	}{
		{"zero", 0, 0, 0},
		{"x only", 0.5, 0, 0},
		{"y only", 0, -0.7, 0},
		{"z only", 0, 0, 2.5},
		{"mixed", 0.3, 0.4, -1.2},
		{"gimbal", 0.6, math32.Pi / 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuatFromEuler(tt.x, tt.y, tt.z)
			e := q.Euler()
			back := QuatFromEuler(e.X, e.Y, e.Z)

			// Compare the induced rotations rather than the angles.
			for _, v := range []Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
				if a, b := q.Rotate(v), back.Rotate(v); math32.Abs(a.Sub(b).Length()) > 1e-3 {
					t.Errorf("rotation mismatch for %v: %v vs %v (euler %v)", v, a, b, e)
				}
			}
		})
	}
}

func TestQuatFromEulerOrder(t *testing.T) {
	// XYZ order: X is applied first. Rotating +Y by 90 about X gives +Z,
	// then 90 about Z leaves +Z alone.
	q := QuatFromEuler(math32.Pi/2, 0, math32.Pi/2)
	if got := q.Rotate(Vec3{0, 1, 0}); !approxVec(got, Vec3{0, 0, 1}) {
		t.Errorf("Rotate(+Y) = %v, want (0,0,1)", got)
	}
}

func TestQuatToMat4(t *testing.T) {
	// Identity quaternion should produce identity matrix
	m := QuatIdentity().ToMat4()

	identity := Identity()
	for i := 0; i < 16; i++ {
		if math32.Abs(m[i]-identity[i]) > 0.0001 {
			t.Errorf("Identity quat should produce identity matrix, element %d: got %v, want %v", i, m[i], identity[i])
		}
	}

	// Matrix and quaternion must agree on an arbitrary rotation.
	q := QuatFromEuler(0.2, -0.4, 1.1)
	v := Vec3{1, 2, 3}
	if a, b := q.Rotate(v), q.ToMat4().TransformDirection(v); !approxVec(a, b) {
		t.Errorf("quat rotate %v != matrix rotate %v", a, b)
	}
}
