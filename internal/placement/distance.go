package placement

import "math"

// SquaredDistance returns the squared Euclidean distance between two sites.
// Every objective term is built from this primitive.
func SquaredDistance(a, b Site) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// ManhattanDistance returns the L1 distance between two sites. Reports quote
// L1 distances, which track travel distance on a grid street network.
func ManhattanDistance(a, b Site) float64 {
	return math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y)
}
