package statestore_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/volumekit/pkg/statestore"
	"github.com/dmitrymomot/volumekit/pkg/volstate"
)

// runStoreSuite checks the behaviour every backend must share.
func runStoreSuite(t *testing.T, store statestore.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing record", func(t *testing.T) {
		_, err := store.GetState(ctx, uuid.New(), volstate.DomainVolume)
		require.ErrorIs(t, err, statestore.ErrNotFound)
		assert.True(t, statestore.IsNotFound(err))
	})

	t.Run("init then get", func(t *testing.T) {
		id := uuid.New()
		require.NoError(t, store.InitState(ctx, id, volstate.DomainVolume, volstate.VolumeCreating))

		got, err := store.GetState(ctx, id, volstate.DomainVolume)
		require.NoError(t, err)
		assert.Equal(t, volstate.VolumeCreating, got)
	})

	t.Run("init twice", func(t *testing.T) {
		id := uuid.New()
		require.NoError(t, store.InitState(ctx, id, volstate.DomainAttach, volstate.AttachDetached))
		err := store.InitState(ctx, id, volstate.DomainAttach, volstate.AttachAttached)
		require.ErrorIs(t, err, statestore.ErrAlreadyExists)

		got, err := store.GetState(ctx, id, volstate.DomainAttach)
		require.NoError(t, err)
		assert.Equal(t, volstate.AttachDetached, got)
	})

	t.Run("domains are independent", func(t *testing.T) {
		id := uuid.New()
		require.NoError(t, store.InitState(ctx, id, volstate.DomainVolume, volstate.VolumeAvailable))
		require.NoError(t, store.InitState(ctx, id, volstate.DomainMigration, volstate.MigrationNone))

		got, err := store.GetState(ctx, id, volstate.DomainMigration)
		require.NoError(t, err)
		assert.Equal(t, volstate.MigrationNone, got)

		_, err = store.GetState(ctx, id, volstate.DomainAttach)
		require.ErrorIs(t, err, statestore.ErrNotFound)
	})

	t.Run("swap", func(t *testing.T) {
		id := uuid.New()
		require.NoError(t, store.InitState(ctx, id, volstate.DomainVolume, volstate.VolumeCreating))
		require.NoError(t, store.SetState(ctx, id, volstate.DomainVolume, volstate.VolumeCreating, volstate.VolumeAvailable))

		got, err := store.GetState(ctx, id, volstate.DomainVolume)
		require.NoError(t, err)
		assert.Equal(t, volstate.VolumeAvailable, got)
	})

	t.Run("swap keeps metadata", func(t *testing.T) {
		id := uuid.New()
		target := volstate.MigrationTargetFor(uuid.NewString())
		require.NoError(t, store.InitState(ctx, id, volstate.DomainMigration, volstate.MigrationNone))
		require.NoError(t, store.SetState(ctx, id, volstate.DomainMigration, volstate.MigrationNone, target))

		got, err := store.GetState(ctx, id, volstate.DomainMigration)
		require.NoError(t, err)
		assert.Equal(t, target, got)
	})

	t.Run("swap with stale expectation", func(t *testing.T) {
		id := uuid.New()
		require.NoError(t, store.InitState(ctx, id, volstate.DomainVolume, volstate.VolumeAvailable))
		err := store.SetState(ctx, id, volstate.DomainVolume, volstate.VolumeCreating, volstate.VolumeError)
		require.ErrorIs(t, err, statestore.ErrConflict)
		assert.True(t, statestore.IsConflict(err))

		got, err := store.GetState(ctx, id, volstate.DomainVolume)
		require.NoError(t, err)
		assert.Equal(t, volstate.VolumeAvailable, got)
	})

	t.Run("swap missing record", func(t *testing.T) {
		err := store.SetState(ctx, uuid.New(), volstate.DomainVolume, volstate.VolumeCreating, volstate.VolumeAvailable)
		require.ErrorIs(t, err, statestore.ErrNotFound)
	})

	t.Run("concurrent swaps have one winner", func(t *testing.T) {
		id := uuid.New()
		require.NoError(t, store.InitState(ctx, id, volstate.DomainVolume, volstate.VolumeAvailable))

		const workers = 8
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := store.SetState(ctx, id, volstate.DomainVolume, volstate.VolumeAvailable, volstate.VolumeDeleting)
				if err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, statestore.ErrConflict)
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})
}
