package directions

import (
	"fmt"

	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/models"
)

// DecodePolyline decodes a path in the encoded-polyline format used by the
// directions service: each coordinate delta is zig-zag encoded into a signed
// integer, split into 5-bit groups low-to-high, each group carrying a
// continuation bit in position 5, and the result offset by 63 into printable
// ASCII. Latitude and longitude deltas alternate and accumulate over the
// whole string; values are scaled by 1e-5 degrees.
func DecodePolyline(encoded string) ([]models.Coordinates, error) {
	var points []models.Coordinates
	var lat, lng int64

	i := 0
	for i < len(encoded) {
		dLat, n, err := decodeSigned(encoded[i:])
		if err != nil {
			return nil, fmt.Errorf("latitude at byte %d: %w", i, err)
		}
		i += n
		lat += dLat

		dLng, n, err := decodeSigned(encoded[i:])
		if err != nil {
			return nil, fmt.Errorf("longitude at byte %d: %w", i, err)
		}
		i += n
		lng += dLng

		points = append(points, models.Coordinates{
			Latitude:  float64(lat) * 1e-5,
			Longitude: float64(lng) * 1e-5,
		})
	}

	return points, nil
}

// decodeSigned consumes one varint from s and undoes the zig-zag transform.
// Returns the signed value and how many bytes were consumed.
func decodeSigned(s string) (int64, int, error) {
	var result int64
	var shift uint
	for i := 0; i < len(s); i++ {
		b := int64(s[i]) - 63
		if b < 0 {
			return 0, 0, fmt.Errorf("invalid polyline character %q", s[i])
		}
		result |= (b & 0x1f) << shift
		if b < 0x20 {
			// Zig-zag: even values are positive, odd are the bitwise
			// complement of negative values.
			if result&1 != 0 {
				return ^(result >> 1), i + 1, nil
			}
			return result >> 1, i + 1, nil
		}
		shift += 5
	}
	return 0, 0, fmt.Errorf("truncated polyline")
}
