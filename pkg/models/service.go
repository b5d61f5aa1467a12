package models

import (
	"errors"
	"fmt"
	"math/bits"
	"math/rand"
	"strings"
)

// ServiceType is a single service category. Each category owns one bit so
// that a set of categories fits in a ServiceSet.
type ServiceType uint8

const (
	// AnyService is the zero ServiceType; used as "no filter" by searches.
	AnyService ServiceType = 0

	Hotel      ServiceType = 1 << 0
	Coffee     ServiceType = 1 << 1
	Restaurant ServiceType = 1 << 2
	ATM        ServiceType = 1 << 3
	GasStation ServiceType = 1 << 4
	Hospital   ServiceType = 1 << 5
)

// ServiceCount is the number of defined service categories.
const ServiceCount = 6

// ServiceSetMask covers every defined category bit.
const ServiceSetMask ServiceSet = 1<<ServiceCount - 1

// ErrInvalidIndex is returned when a service is looked up by an ordinal
// outside [0, ServiceCount).
var ErrInvalidIndex = errors.New("invalid service index")

var serviceNames = [ServiceCount]string{
	"Hotel",
	"Coffee",
	"Restaurant",
	"ATM",
	"Gas station",
	"Hospital",
}

// AllServices returns every category in ordinal order.
func AllServices() []ServiceType {
	services := make([]ServiceType, ServiceCount)
	for i := range services {
		services[i] = ServiceType(1 << i)
	}
	return services
}

// ServiceFromIndex maps an ordinal in [0, ServiceCount) to its category.
func ServiceFromIndex(i int) (ServiceType, error) {
	if i < 0 || i >= ServiceCount {
		return AnyService, fmt.Errorf("%w: %d", ErrInvalidIndex, i)
	}
	return ServiceType(1 << i), nil
}

// Index returns the ordinal of t, or -1 if t is not exactly one defined
// category.
func (t ServiceType) Index() int {
	if !t.Valid() {
		return -1
	}
	return bits.TrailingZeros8(uint8(t))
}

// Valid reports whether t is exactly one of the defined categories.
func (t ServiceType) Valid() bool {
	return t != 0 && t&ServiceType(ServiceSetMask) == t && t&(t-1) == 0
}

func (t ServiceType) String() string {
	if t == AnyService {
		return "Any"
	}
	if i := t.Index(); i >= 0 {
		return serviceNames[i]
	}
	return fmt.Sprintf("ServiceType(%d)", uint8(t))
}

// ServiceSet is the bitmask of categories offered by a place.
type ServiceSet uint8

// ToBinary folds a list of categories into a set.
func ToBinary(services []ServiceType) ServiceSet {
	var set ServiceSet
	for _, s := range services {
		set |= ServiceSet(s)
	}
	return set & ServiceSetMask
}

// FromBinary expands a set into its categories in ascending bit order. Bits
// outside the defined categories are ignored.
func FromBinary(set ServiceSet) []ServiceType {
	set &= ServiceSetMask
	services := make([]ServiceType, 0, bits.OnesCount8(uint8(set)))
	for set != 0 {
		low := set & -set
		services = append(services, ServiceType(low))
		set &^= low
	}
	return services
}

// Has reports whether t is in the set.
func (s ServiceSet) Has(t ServiceType) bool {
	return t != AnyService && s&ServiceSet(t) == ServiceSet(t)
}

// With returns the set with t added.
func (s ServiceSet) With(t ServiceType) ServiceSet {
	return (s | ServiceSet(t)) & ServiceSetMask
}

// Without returns the set with t removed.
func (s ServiceSet) Without(t ServiceType) ServiceSet {
	return s &^ ServiceSet(t)
}

// Len returns the number of categories in the set.
func (s ServiceSet) Len() int {
	return bits.OnesCount8(uint8(s & ServiceSetMask))
}

func (s ServiceSet) String() string {
	services := FromBinary(s)
	names := make([]string, len(services))
	for i, t := range services {
		names[i] = t.String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// RandomServices picks one category uniformly at random.
func RandomServices(r *rand.Rand) ServiceSet {
	return ServiceSet(1 << r.Intn(ServiceCount))
}
