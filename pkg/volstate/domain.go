package volstate

// Domain identifies a lifecycle namespace. Each domain owns exactly one table
// and domains never share or merge tables.
type Domain uint8

const (
	DomainVolume Domain = iota
	DomainAttach
	DomainMigration
	DomainMicroState

	domainCount
)

// Domain names as they appear on the wire and in persisted records.
const (
	DomainNameVolume     = "volume"
	DomainNameAttach     = "attach"
	DomainNameMigration  = "migration"
	DomainNameMicroState = "micro_state"
)

// legacyMicroStateName is the registry key older callers use for micro-states.
const legacyMicroStateName = "micro_states"

var domainNames = [domainCount]string{
	DomainVolume:     DomainNameVolume,
	DomainAttach:     DomainNameAttach,
	DomainMigration:  DomainNameMigration,
	DomainMicroState: DomainNameMicroState,
}

// Domains returns every domain in declaration order.
func Domains() []Domain {
	return []Domain{DomainVolume, DomainAttach, DomainMigration, DomainMicroState}
}

// String returns the wire name of the domain.
func (d Domain) String() string {
	if !d.Valid() {
		return "unknown"
	}
	return domainNames[d]
}

// Valid reports whether d is one of the fixed domains.
func (d Domain) Valid() bool {
	return d < domainCount
}

// MarshalText encodes the domain as its wire name.
func (d Domain) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, NewUnknownDomainError(d.String())
	}
	return []byte(domainNames[d]), nil
}

// UnmarshalText decodes a wire name. The legacy "micro_states" key is accepted.
func (d *Domain) UnmarshalText(text []byte) error {
	parsed, err := ParseDomain(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDomain resolves a domain by name.
// Returns *UnknownDomainError for names outside the fixed set.
func ParseDomain(name string) (Domain, error) {
	switch name {
	case DomainNameVolume:
		return DomainVolume, nil
	case DomainNameAttach:
		return DomainAttach, nil
	case DomainNameMigration:
		return DomainMigration, nil
	case DomainNameMicroState, legacyMicroStateName:
		return DomainMicroState, nil
	default:
		return 0, NewUnknownDomainError(name)
	}
}
