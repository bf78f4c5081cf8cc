package geo

import (
	"fmt"
	"math"

	"github.com/openswarm-io/skysweep/core"
)

// RegionKind distinguishes proper rectangles from degenerate point regions.
type RegionKind int

const (
	Rectangle RegionKind = iota
	Point
)

// Region is a rectangle in north-west / south-east convention:
// TopLeft.Lat >= BottomRight.Lat and TopLeft.Lon <= BottomRight.Lon.
// A Point region degenerates both corners to the same position.
type Region struct {
	TopLeft     Position
	BottomRight Position
	Kind        RegionKind
}

// NewRegion validates corners and builds a Rectangle region. Malformed
// corners (NaN, or violating the NW/SE convention) are rejected immediately:
// a region that silently passed through here would partition space
// incorrectly for every peer that reads it.
func NewRegion(topLeft, bottomRight Position) (Region, error) {
	if !topLeft.Valid() || !bottomRight.Valid() {
		return Region{}, fmt.Errorf("%w: corners %v, %v", core.ErrMalformedRegion, topLeft, bottomRight)
	}
	if topLeft.Lat < bottomRight.Lat || topLeft.Lon > bottomRight.Lon {
		return Region{}, fmt.Errorf("%w: not north-west/south-east: %v, %v",
			core.ErrMalformedRegion, topLeft, bottomRight)
	}
	kind := Rectangle
	if topLeft == bottomRight {
		kind = Point
	}
	return Region{TopLeft: topLeft, BottomRight: bottomRight, Kind: kind}, nil
}

// PointRegion builds a degenerate region at a single position.
func PointRegion(p Position) (Region, error) {
	return NewRegion(p, p)
}

// BoundingBox builds the smallest region containing both positions,
// regardless of their ordering.
func BoundingBox(p1, p2 Position) (Region, error) {
	if !p1.Valid() || !p2.Valid() {
		return Region{}, fmt.Errorf("%w: corners %v, %v", core.ErrMalformedRegion, p1, p2)
	}
	topLeft := Position{Lat: math.Max(p1.Lat, p2.Lat), Lon: math.Min(p1.Lon, p2.Lon)}
	botRight := Position{Lat: math.Min(p1.Lat, p2.Lat), Lon: math.Max(p1.Lon, p2.Lon)}
	return NewRegion(topLeft, botRight)
}

// Contains reports whether p falls inside the region, boundary included.
func (r Region) Contains(p Position) bool {
	return p.Lat <= r.TopLeft.Lat && p.Lat >= r.BottomRight.Lat &&
		p.Lon >= r.TopLeft.Lon && p.Lon <= r.BottomRight.Lon
}

// Center returns the region centroid.
func (r Region) Center() Position {
	return Position{
		Lat: (r.TopLeft.Lat + r.BottomRight.Lat) / 2,
		Lon: (r.TopLeft.Lon + r.BottomRight.Lon) / 2,
	}
}

// LatSpan is the north-south extent in degrees.
func (r Region) LatSpan() float64 {
	return r.TopLeft.Lat - r.BottomRight.Lat
}

// LonSpan is the east-west extent in degrees.
func (r Region) LonSpan() float64 {
	return r.BottomRight.Lon - r.TopLeft.Lon
}

func (r Region) String() string {
	return fmt.Sprintf("[%v - %v]", r.TopLeft, r.BottomRight)
}
