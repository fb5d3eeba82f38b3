package games

import "math"

// SegmentAt returns the index of the segment under the pointer for a rotation.
func SegmentAt(rotation float64, segments int) int {
	seg := 360 / float64(segments)
	angle := math.Mod(360-math.Mod(rotation, 360), 360)
	idx := int(angle / seg)
	if idx >= segments {
		idx = segments - 1
	}
	return idx
}
