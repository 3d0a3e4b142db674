package scatter

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/Faultbox/surfscatter/pkg/math"
)

// ErrMalformedPoints is returned when a stored point list cannot be decoded.
var ErrMalformedPoints = errors.New("malformed point data")

// pointRecord is the persisted form of a Sample.
type pointRecord struct {
	Point  *[3]float32 `json:"point"`
	Normal *[3]float32 `json:"normal"`
}

// EncodePoints serializes samples as a JSON array of
// {"point":[x,y,z],"normal":[x,y,z]} records.
func EncodePoints(points []Sample) (string, error) {
	records := make([]pointRecord, len(points))
	for i, p := range points {
		pt, n := p.Point.Array(), p.Normal.Array()
		records[i] = pointRecord{Point: &pt, Normal: &n}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encoding points: %w", err)
	}
	return string(data), nil
}

// DecodePoints parses a list produced by EncodePoints. The empty string
// decodes to an empty list. Records missing either field are rejected.
func DecodePoints(data string) ([]Sample, error) {
	if data == "" {
		return nil, nil
	}

	var records []pointRecord
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPoints, err)
	}

	points := make([]Sample, len(records))
	for i, rec := range records {
		if rec.Point == nil || rec.Normal == nil {
			return nil, fmt.Errorf("%w: record %d is missing point or normal", ErrMalformedPoints, i)
		}
		points[i] = Sample{
			Point:  math.Vec3FromArray(*rec.Point),
			Normal: math.Vec3FromArray(*rec.Normal),
		}
	}
	return points, nil
}
