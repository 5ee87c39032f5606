// Package points holds the Deallocation Point Set produced by lifetime
// inference and the interchange document it is persisted as.
package points

import "fmt"

// Point marks where a release statement should be inserted.
type Point struct {
	FunctionName string `json:"function_name" yaml:"function_name" msgpack:"function_name"`
	LineNumber   int    `json:"line_number" yaml:"line_number" msgpack:"line_number"`
	VariableName string `json:"variable_name" yaml:"variable_name" msgpack:"variable_name"`
}

func (p Point) String() string {
	return fmt.Sprintf("%s:%d %s", p.FunctionName, p.LineNumber, p.VariableName)
}

// Set is an append-only, insertion-ordered collection of points.
type Set struct {
	points []Point
}

// NewSet creates a Set holding the given points in order.
func NewSet(pts ...Point) *Set {
	s := &Set{}
	for _, p := range pts {
		s.Add(p)
	}
	return s
}

// Add appends a point.
func (s *Set) Add(p Point) {
	s.points = append(s.points, p)
}

// Points returns a copy of the points in insertion order.
func (s *Set) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// At returns the points for a function at a line, in insertion order.
func (s *Set) At(function string, line int) []Point {
	var out []Point
	for _, p := range s.points {
		if p.LineNumber == line && p.FunctionName == function {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of points.
func (s *Set) Len() int {
	return len(s.points)
}

// Empty reports whether the set has no points.
func (s *Set) Empty() bool {
	return len(s.points) == 0
}
