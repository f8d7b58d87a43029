package volstate

import "fmt"

// Verdict is the outcome of a successful validation.
type Verdict uint8

const (
	// VerdictReject accompanies every validation error.
	VerdictReject Verdict = iota
	// VerdictAllow means the transition is a legal edge and should be persisted.
	VerdictAllow
	// VerdictIgnore means the transition is a no-op and nothing should be written.
	VerdictIgnore
)

func (v Verdict) String() string {
	switch v {
	case VerdictAllow:
		return "allow"
	case VerdictIgnore:
		return "ignore"
	default:
		return "reject"
	}
}

// MarshalText encodes the verdict as its lowercase name.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a verdict name produced by MarshalText.
func (v *Verdict) UnmarshalText(text []byte) error {
	switch string(text) {
	case "allow":
		*v = VerdictAllow
	case "ignore":
		*v = VerdictIgnore
	case "reject":
		*v = VerdictReject
	default:
		return fmt.Errorf("unknown verdict '%s'", text)
	}
	return nil
}

// ValidateOption tunes a single validation call.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	identityIgnored bool
	ignored         []Transition
}

// WithIdentityIgnored makes old == new (by base label) return VerdictIgnore.
func WithIdentityIgnored() ValidateOption {
	return func(c *validateConfig) { c.identityIgnored = true }
}

// WithIgnoredTransitions makes the listed pairs return VerdictIgnore.
// Pairs use base labels.
func WithIgnoredTransitions(trs ...Transition) ValidateOption {
	return func(c *validateConfig) { c.ignored = append(c.ignored, trs...) }
}

// Validate decides whether oldState may move to newState within domain d.
//
// Metadata suffixes are stripped from both values first. Unknown labels fail
// with *UnknownStateError, checked old before new. A suffix on the empty
// label (":vol-1") is unknown too, since "no migration" carries no metadata. Identity and ignored pairs
// short-circuit to VerdictIgnore, table edges give VerdictAllow, anything else
// fails with *InvalidTransitionError.
func (r *Registry) Validate(d Domain, oldState, newState string, opts ...ValidateOption) (Verdict, error) {
	t, err := r.TablesFor(d)
	if err != nil {
		return VerdictReject, err
	}

	cfg := validateConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	from, err := t.Resolve("old", oldState)
	if err != nil {
		return VerdictReject, err
	}
	to, err := t.Resolve("new", newState)
	if err != nil {
		return VerdictReject, err
	}

	if cfg.identityIgnored && from == to {
		return VerdictIgnore, nil
	}

	pair := T(from, to)
	for _, ig := range cfg.ignored {
		if ig == pair {
			return VerdictIgnore, nil
		}
	}

	if t.Allows(pair) {
		return VerdictAllow, nil
	}
	return VerdictReject, NewInvalidTransitionError(d, from, to)
}

// Validate runs Registry.Validate against the default registry.
func Validate(d Domain, oldState, newState string, opts ...ValidateOption) (Verdict, error) {
	return defaultRegistry.Validate(d, oldState, newState, opts...)
}
