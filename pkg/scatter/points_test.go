package scatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/surfscatter/pkg/math"
	"github.com/Faultbox/surfscatter/pkg/mesh"
)

func TestPointsRoundTrip(t *testing.T) {
	points := GeneratePoints(mesh.Cube(2.5), 12345, 64)

	data, err := EncodePoints(points)
	require.NoError(t, err)

	back, err := DecodePoints(data)
	require.NoError(t, err)
	assert.Equal(t, points, back)
}

func TestEncodePointsLayout(t *testing.T) {
	data, err := EncodePoints([]Sample{{
		Point:  math.Vec3{X: 1, Y: 2.5, Z: -3},
		Normal: math.Up,
	}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"point":[1,2.5,-3],"normal":[0,0,1]}]`, data)
}

func TestDecodePointsEmpty(t *testing.T) {
	points, err := DecodePoints("")
	require.NoError(t, err)
	assert.Empty(t, points)

	points, err = DecodePoints("[]")
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestDecodePointsMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "points!"},
		{"object instead of array", `{"point":[0,0,0]}`},
		{"missing normal", `[{"point":[0,0,0]}]`},
		{"missing point", `[{"normal":[0,0,1]}]`},
		{"wrong type", `[{"point":"here","normal":[0,0,1]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePoints(tt.data)
			assert.True(t, errors.Is(err, ErrMalformedPoints), "got %v", err)
		})
	}
}
