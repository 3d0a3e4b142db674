package math

import "github.com/chewxy/math32"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	s := math32.Sin(angle / 2)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: math32.Cos(angle / 2),
	}
}

// QuatFromEuler creates a quaternion from XYZ Euler angles in radians.
// X is applied first, then Y, then Z (R = Rz * Ry * Rx).
func QuatFromEuler(x, y, z float32) Quat {
	sx, cx := math32.Sincos(x / 2)
	sy, cy := math32.Sincos(y / 2)
	sz, cz := math32.Sincos(z / 2)

	return Quat{
		X: sx*cy*cz - cx*sy*sz,
		Y: cx*sy*cz + sx*cy*sz,
		Z: cx*cy*sz - sx*sy*cz,
		W: cx*cy*cz + sx*sy*sz,
	}
}

// Euler returns the XYZ Euler angles in radians, the inverse of QuatFromEuler.
func (q Quat) Euler() Vec3 {
	q = q.Normalize()

	m20 := 2 * (q.X*q.Z - q.Y*q.W)
	if m20 > 1 {
		m20 = 1
	} else if m20 < -1 {
		m20 = -1
	}
	y := -math32.Asin(m20)

	// Gimbal lock: Y is +-90 degrees, fold Z into X
	if math32.Abs(m20) > 0.99999 {
		m01 := 2 * (q.X*q.Y - q.Z*q.W)
		m11 := 1 - 2*(q.X*q.X+q.Z*q.Z)
		return Vec3{X: math32.Atan2(-m20*m01, m11), Y: y, Z: 0}
	}

	m21 := 2 * (q.Y*q.Z + q.X*q.W)
	m22 := 1 - 2*(q.X*q.X+q.Y*q.Y)
	m10 := 2 * (q.X*q.Y + q.Z*q.W)
	m00 := 1 - 2*(q.Y*q.Y+q.Z*q.Z)
	return Vec3{
		X: math32.Atan2(m21, m22),
		Y: y,
		Z: math32.Atan2(m10, m00),
	}
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Mul multiplies two quaternions (combines rotations).
// q.Mul(r) applies r first, then q; r is therefore a rotation in q's local frame.
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Rotate rotates a vector by the quaternion.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// IsIdentity reports whether q is exactly the identity rotation.
func (q Quat) IsIdentity() bool {
	return q == QuatIdentity()
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	// Normalize first
	q = q.Normalize()

	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}
