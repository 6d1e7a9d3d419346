package access

import (
	"fmt"
	"strings"
)

// AccountStatus is the role an account holds. The numeric order follows
// privilege but checks go through capability sets, never comparisons.
type AccountStatus uint8

const (
	StatusBasic AccountStatus = iota
	StatusVendor
	StatusSponsor
	StatusAdmin
)

// Capability is a single privilege an account status may grant.
type Capability uint8

const (
	CapVendor Capability = 1 << iota
	CapSponsor
	CapAdmin
)

// capabilities maps each status to the set it grants. A new tier only needs a
// row here.
var capabilities = map[AccountStatus]Capability{
	StatusBasic:   0,
	StatusVendor:  CapVendor,
	StatusSponsor: CapSponsor,
	StatusAdmin:   CapAdmin | CapSponsor | CapVendor,
}

func (s AccountStatus) Valid() bool {
	_, ok := capabilities[s]
	return ok
}

// Has reports whether the status grants every capability in c.
func (s AccountStatus) Has(c Capability) bool {
	granted, ok := capabilities[s]
	if !ok {
		return false
	}
	return granted&c == c
}

func (s AccountStatus) IsAdmin() bool   { return s.Has(CapAdmin) }
func (s AccountStatus) IsSponsor() bool { return s.Has(CapSponsor) }
func (s AccountStatus) IsVendor() bool  { return s.Has(CapVendor) }

func (s AccountStatus) String() string {
	switch s {
	case StatusBasic:
		return "basic"
	case StatusVendor:
		return "vendor"
	case StatusSponsor:
		return "sponsor"
	case StatusAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// ParseStatus accepts the lower or mixed case status name.
func ParseStatus(raw string) (AccountStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "basic":
		return StatusBasic, nil
	case "vendor":
		return StatusVendor, nil
	case "sponsor":
		return StatusSponsor, nil
	case "admin":
		return StatusAdmin, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

func (c Capability) String() string {
	switch c {
	case CapVendor:
		return "vendor"
	case CapSponsor:
		return "sponsor"
	case CapAdmin:
		return "admin"
	default:
		return fmt.Sprintf("capability(%d)", uint8(c))
	}
}

func (s AccountStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *AccountStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// NormalizeAccount canonicalises an account id.
func NormalizeAccount(account string) string {
	return strings.ToLower(strings.TrimSpace(account))
}
