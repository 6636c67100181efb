// Package geohash decodes base-32 geohash strings into coordinates.
//
// Decoding is tolerant: characters outside the geohash alphabet are skipped,
// which lowers precision but never fails. Upper-case input is accepted.
package geohash

import "strings"

// Alphabet is the standard geohash base-32 alphabet (no a, i, l, o).
const Alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

var decodeTable = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		t[Alphabet[i]] = int8(i)
	}
	return t
}()

// Box is the latitude/longitude interval pair left after decoding.
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Center returns the midpoint of both intervals.
func (b Box) Center() (lat, lon float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLon + b.MaxLon) / 2
}

// LatError returns the half-width of the latitude interval.
func (b Box) LatError() float64 { return (b.MaxLat - b.MinLat) / 2 }

// LonError returns the half-width of the longitude interval.
func (b Box) LonError() float64 { return (b.MaxLon - b.MinLon) / 2 }

// Decode returns the center of the cell described by hash.
func Decode(hash string) (lat, lon float64) {
	return DecodeBounds(hash).Center()
}

// DecodeBounds narrows [-90,90] x [-180,180] by the bits of hash.
// Bits alternate starting with longitude, most significant bit first.
// A set bit keeps the upper half of the interval.
func DecodeBounds(hash string) Box {
	b := Box{MinLat: -90, MaxLat: 90, MinLon: -180, MaxLon: 180}
	even := true

	for _, c := range []byte(strings.ToLower(hash)) {
		v := decodeTable[c]
		if v < 0 {
			continue
		}
		for shift := 4; shift >= 0; shift-- {
			bit := (v>>shift)&1 == 1
			if even {
				mid := (b.MinLon + b.MaxLon) / 2
				if bit {
					b.MinLon = mid
				} else {
					b.MaxLon = mid
				}
			} else {
				mid := (b.MinLat + b.MaxLat) / 2
				if bit {
					b.MinLat = mid
				} else {
					b.MaxLat = mid
				}
			}
			even = !even
		}
	}

	return b
}
