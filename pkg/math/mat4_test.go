package math

import "testing"

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if got := m.Translation(); got != (Vec3{5, 10, 15}) {
		t.Errorf("Translate: got %v, want (5, 10, 15)", got)
	}
}

func TestTransformVec3(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.TransformVec3(Vec3{1, 2, 3})

	if want := (Vec3{11, 22, 33}); got != want {
		t.Errorf("TransformVec3: got %v, want %v", got, want)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(10, 20, 30).Mul(Scale(2, 2, 2))
	got := m.TransformDirection(Vec3{0, 0, 1})

	if want := (Vec3{0, 0, 2}); got != want {
		t.Errorf("TransformDirection: got %v, want %v", got, want)
	}
}

func TestCompose(t *testing.T) {
	// Scale first, then rotate 90 about Z, then translate.
	m := Compose(Vec3{1, 0, 0}, QuatFromAxisAngle(Up, Radians(90)), Vec3{2, 2, 2})
	got := m.TransformVec3(Vec3{1, 0, 0})

	if !approxVec(got, Vec3{1, 2, 0}) {
		t.Errorf("Compose: got %v, want (1, 2, 0)", got)
	}
}
