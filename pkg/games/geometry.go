package games

// Point is a position in percent of the play area (0..100 on both axes).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by v.
func (p Point) Add(v Point) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Bounds is the safe interior region targets may occupy, so they never
// spawn flush against the edges.
type Bounds struct {
	Min float64 `json:"min" mapstructure:"min"`
	Max float64 `json:"max" mapstructure:"max"`
}

// DefaultBounds keeps targets between 10% and 90% of the area.
var DefaultBounds = Bounds{Min: 10, Max: 90}

// Contains reports whether p lies inside the bounds on both axes.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Min && p.X <= b.Max && p.Y >= b.Min && p.Y <= b.Max
}

// Clamp pulls p back inside the bounds.
func (b Bounds) Clamp(p Point) Point {
	return Point{X: clampFloat(p.X, b.Min, b.Max), Y: clampFloat(p.Y, b.Min, b.Max)}
}

// Center is the middle of the bounds.
func (b Bounds) Center() Point {
	mid := (b.Min + b.Max) / 2
	return Point{X: mid, Y: mid}
}

// RandomPoint draws a uniform position inside the bounds.
func RandomPoint(r Rand, b Bounds) Point {
	span := b.Max - b.Min
	return Point{
		X: b.Min + r.Float64()*span,
		Y: b.Min + r.Float64()*span,
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPercent bounds v to [0, 100].
func ClampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
