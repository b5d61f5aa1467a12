// Package models holds the place records indexed by the quadtree and the
// service categories attached to them.
package models

import "fmt"

// Place is a point offering a set of services. Two places are the same point
// when their coordinates compare equal exactly.
type Place struct {
	Services ServiceSet `json:"services"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
}

// NewPlace creates a place at (x, y) offering services.
func NewPlace(services ServiceSet, x, y float64) *Place {
	return &Place{Services: services & ServiceSetMask, X: x, Y: y}
}

// At reports whether the place is located exactly at (x, y).
func (p *Place) At(x, y float64) bool {
	return p.X == x && p.Y == y
}

// HasService reports whether the place offers t.
func (p *Place) HasService(t ServiceType) bool {
	return p.Services.Has(t)
}

// AddService adds t to the place. It returns false if t is already offered
// or is not a single defined category.
func (p *Place) AddService(t ServiceType) bool {
	if !t.Valid() || p.Services.Has(t) {
		return false
	}
	p.Services = p.Services.With(t)
	return true
}

// RemoveService removes t from the place. It returns false if t is not
// offered. Removing the last remaining service is allowed.
func (p *Place) RemoveService(t ServiceType) bool {
	if !t.Valid() || !p.Services.Has(t) {
		return false
	}
	p.Services = p.Services.Without(t)
	return true
}

// ServiceList returns the offered services in ascending bit order.
func (p *Place) ServiceList() []ServiceType {
	return FromBinary(p.Services)
}

func (p *Place) String() string {
	return fmt.Sprintf("Place: service = %s, x = %g, y = %g", p.Services, p.X, p.Y)
}
