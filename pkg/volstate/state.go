package volstate

import "strings"

// metaSeparator splits a raw state value into its base label and caller payload.
const metaSeparator = ":"

// State is a raw state value split into the base label that takes part in
// transition checks and the metadata suffix that the engine ignores.
//
// "target:8a1f..." parses to State{Base: "target", Meta: "8a1f...", HasMeta: true}.
type State struct {
	Base    string
	Meta    string
	HasMeta bool
}

// ParseState splits raw on the first separator. Values without a separator
// are returned as a bare base label.
func ParseState(raw string) State {
	base, meta, found := strings.Cut(raw, metaSeparator)
	return State{Base: base, Meta: meta, HasMeta: found}
}

// NewState builds an annotated state. An empty meta yields a bare label.
func NewState(base, meta string) State {
	return State{Base: base, Meta: meta, HasMeta: meta != ""}
}

// String returns the wire form, re-attaching the metadata suffix if present.
func (s State) String() string {
	if !s.HasMeta {
		return s.Base
	}
	return s.Base + metaSeparator + s.Meta
}

// BaseLabel strips any metadata suffix from raw.
func BaseLabel(raw string) string {
	return ParseState(raw).Base
}
