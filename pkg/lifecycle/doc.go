// Package lifecycle performs read-validate-write cycles over a state store.
//
// A Manager owns a transition registry and a statestore.Store. Every write for
// a resource runs under a per-resource lock, and the store compare-and-swap
// catches writers in other processes:
//
//	m := lifecycle.NewManager(store, lifecycle.WithLogger(log))
//	if err := m.Register(ctx, id, volstate.DomainVolume, volstate.VolumeCreating); err != nil {
//	    return err
//	}
//	res, err := m.Transition(ctx, id, volstate.DomainVolume, volstate.VolumeAvailable)
//
// Transition is strict and returns validation failures as volstate errors.
// TransitionQuiet follows the quiet validation rules: rejected moves are
// logged and still written, but persistence errors are returned.
package lifecycle
