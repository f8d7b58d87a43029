// Package volstate decides whether a volume, or one of its coupled
// sub-lifecycles, may move from one status to another.
//
// Four lifecycle domains are supported, each with its own fixed table of known
// states and allowed transitions:
//
//	volume      – coarse volume status (creating, available, in-use, ...)
//	attach      – attached / detached
//	migration   – migration sub-status, "" meaning no migration in progress
//	micro_state – internal steps of the create-volume pipeline
//
// # Architecture
//
// Tables live in a Registry that is built once and never modified. The
// package-level Default registry holds the canonical tables; NewRegistry can
// derive a registry with edges added or removed (for example the unverified
// recovery edges, see WithoutRecoveryTransitions) or with overrides loaded
// from YAML.
//
// A single table-driven Validate function serves every domain. State values
// may carry caller metadata after a colon ("target:<volume-id>"); ParseState
// splits it off and only the base label is checked.
//
// # Usage
//
//	verdict, err := volstate.Validate(volstate.DomainVolume, "creating", "available")
//	switch {
//	case volstate.IsInvalidTransitionError(err):
//	    // reject the request
//	case err != nil:
//	    // unknown state: corrupted record or bad input
//	case verdict == volstate.VerdictIgnore:
//	    // nothing to persist
//	default:
//	    // persist the new state
//	}
//
// # Strict and quiet modes
//
// Validate always reports failures as typed errors (*UnknownStateError,
// *InvalidTransitionError, *UnknownDomainError). ValidateQuiet is meant for
// reconciliation code that must not abort: it logs one warning per rejected
// transition and returns true.
//
// # Concurrency
//
// Validation performs no I/O and takes no locks. Callers are responsible for
// reading, validating and persisting each resource's state as one atomic unit;
// see package lifecycle.
package volstate
