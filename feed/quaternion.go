// Package feed reads orientation quaternions from a serial device.
package feed

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Quaternion represents a quaternion with i, j, k, real components
type Quaternion struct {
	I    float64 `json:"i"`
	J    float64 `json:"j"`
	K    float64 `json:"k"`
	Real float64 `json:"real"`
}

// ParseQuaternion parses a line in format "i,j,k,real"
func ParseQuaternion(line string) (Quaternion, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 4 {
		return Quaternion{}, errors.Errorf("expected 4 values, got %d", len(parts))
	}
	var v [4]float64
	for n, name := range []string{"i", "j", "k", "real"} {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[n]), 64)
		if err != nil {
			return Quaternion{}, errors.Wrapf(err, "invalid %s value", name)
		}
		v[n] = f
	}
	return Quaternion{I: v[0], J: v[1], K: v[2], Real: v[3]}, nil
}

// Normalize returns q scaled to unit length. The zero quaternion becomes the
// identity.
func (q Quaternion) Normalize() Quaternion {
	l := math.Sqrt(q.I*q.I + q.J*q.J + q.K*q.K + q.Real*q.Real)
	if l == 0 {
		return Quaternion{Real: 1}
	}
	return Quaternion{I: q.I / l, J: q.J / l, K: q.K / l, Real: q.Real / l}
}

// Euler returns the rotation of q as XYZ Euler angles in radians, the order
// three.js applies to Object3D.rotation.
func (q Quaternion) Euler() (x, y, z float64) {
	q = q.Normalize()
	qx, qy, qz, qw := q.I, q.J, q.K, q.Real

	m11 := 1 - 2*(qy*qy+qz*qz)
	m12 := 2 * (qx*qy - qw*qz)
	m13 := 2 * (qx*qz + qw*qy)
	m22 := 1 - 2*(qx*qx+qz*qz)
	m23 := 2 * (qy*qz - qw*qx)
	m32 := 2 * (qy*qz + qw*qx)
	m33 := 1 - 2*(qx*qx+qy*qy)

	y = math.Asin(math.Max(-1, math.Min(1, m13)))
	if math.Abs(m13) < 0.9999999 {
		x = math.Atan2(-m23, m33)
		z = math.Atan2(-m12, m11)
	} else {
		// Gimbal lock: fold all of the roll into x.
		x = math.Atan2(m32, m22)
	}
	return x, y, z
}
