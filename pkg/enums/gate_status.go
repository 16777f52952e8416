package enums

// GateStatus is the availability gate's belief about the remote cart service.
type GateStatus string

const (
	GateStatusAvailable   GateStatus = "available"
	GateStatusUnavailable GateStatus = "unavailable"
)

// String implements fmt.Stringer.
func (g GateStatus) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GateStatus.
func (g GateStatus) IsValid() bool {
	return g == GateStatusAvailable || g == GateStatusUnavailable
}
