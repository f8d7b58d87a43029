package volstate_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/volumekit/pkg/volstate"
)

func TestValidateScenarios(t *testing.T) {
	t.Parallel()

	t.Run("creating to available is allowed", func(t *testing.T) {
		t.Parallel()
		v, err := volstate.Validate(volstate.DomainVolume, volstate.VolumeCreating, volstate.VolumeAvailable)
		require.NoError(t, err)
		assert.Equal(t, volstate.VerdictAllow, v)
	})

	t.Run("available to in-use needs attaching first", func(t *testing.T) {
		t.Parallel()
		v, err := volstate.Validate(volstate.DomainVolume, volstate.VolumeAvailable, volstate.VolumeInUse)
		require.Error(t, err)
		assert.Equal(t, volstate.VerdictReject, v)
		assert.True(t, volstate.IsInvalidTransitionError(err))
		assert.ErrorIs(t, err, volstate.ErrInvalidTransition)

		var e *volstate.InvalidTransitionError
		require.ErrorAs(t, err, &e)
		assert.Equal(t, volstate.DomainVolume, e.Domain)
		assert.Equal(t, volstate.VolumeAvailable, e.From)
		assert.Equal(t, volstate.VolumeInUse, e.To)
	})

	t.Run("identity is ignored on request", func(t *testing.T) {
		t.Parallel()
		v, err := volstate.Validate(volstate.DomainAttach, volstate.AttachAttached, volstate.AttachAttached,
			volstate.WithIdentityIgnored())
		require.NoError(t, err)
		assert.Equal(t, volstate.VerdictIgnore, v)
	})

	t.Run("identity is rejected by default", func(t *testing.T) {
		t.Parallel()
		_, err := volstate.Validate(volstate.DomainAttach, volstate.AttachAttached, volstate.AttachAttached)
		assert.True(t, volstate.IsInvalidTransitionError(err))
	})

	t.Run("no migration to migrating is allowed", func(t *testing.T) {
		t.Parallel()
		v, err := volstate.Validate(volstate.DomainMigration, volstate.MigrationNone, volstate.MigrationMigrating)
		require.NoError(t, err)
		assert.Equal(t, volstate.VerdictAllow, v)
	})

	t.Run("micro-state pipeline edges", func(t *testing.T) {
		t.Parallel()
		v, err := volstate.Validate(volstate.DomainMicroState, volstate.MicroStateEntryCreate, volstate.MicroStateQuotaCommit)
		require.NoError(t, err)
		assert.Equal(t, volstate.VerdictAllow, v)

		_, err = volstate.Validate(volstate.DomainMicroState, volstate.MicroStateQuotaReserve, volstate.MicroStateEntryCreate)
		assert.True(t, volstate.IsInvalidTransitionError(err))
	})
}

func TestValidateSuffixStripping(t *testing.T) {
	t.Parallel()

	target := volstate.MigrationTargetFor("vol-123")
	assert.Equal(t, "target:vol-123", target)

	gotV, gotErr := volstate.Validate(volstate.DomainMigration, target, volstate.MigrationMigrating)
	wantV, wantErr := volstate.Validate(volstate.DomainMigration, volstate.MigrationTarget, volstate.MigrationMigrating)
	assert.Equal(t, wantV, gotV)
	assert.Equal(t, wantErr, gotErr)

	v, err := volstate.Validate(volstate.DomainVolume, "creating:host-a", "available:host-b")
	require.NoError(t, err)
	assert.Equal(t, volstate.VerdictAllow, v)

	// Suffixes never make two different base labels equal, nor two equal ones different.
	v, err = volstate.Validate(volstate.DomainMigration, "target:a", "target:b", volstate.WithIdentityIgnored())
	require.NoError(t, err)
	assert.Equal(t, volstate.VerdictIgnore, v)
}

func TestValidateIgnoredTransitions(t *testing.T) {
	t.Parallel()

	v, err := volstate.Validate(volstate.DomainVolume, volstate.VolumeAvailable, volstate.VolumeInUse,
		volstate.WithIgnoredTransitions(volstate.T(volstate.VolumeAvailable, volstate.VolumeInUse)))
	require.NoError(t, err)
	assert.Equal(t, volstate.VerdictIgnore, v)

	// Ignored pairs take precedence over allowed edges.
	v, err = volstate.Validate(volstate.DomainVolume, volstate.VolumeCreating, volstate.VolumeAvailable,
		volstate.WithIgnoredTransitions(volstate.T(volstate.VolumeCreating, volstate.VolumeAvailable)))
	require.NoError(t, err)
	assert.Equal(t, volstate.VerdictIgnore, v)

	// Ignored pairs never bypass the known-state check.
	_, err = volstate.Validate(volstate.DomainVolume, volstate.VolumeAvailable, "bogus",
		volstate.WithIgnoredTransitions(volstate.T(volstate.VolumeAvailable, "bogus")))
	assert.True(t, volstate.IsUnknownStateError(err))
}

func TestValidateUnknownState(t *testing.T) {
	t.Parallel()

	_, err := volstate.Validate(volstate.DomainVolume, volstate.VolumeAvailable, "bogus_state")
	require.Error(t, err)
	assert.ErrorIs(t, err, volstate.ErrUnknownState)

	var e *volstate.UnknownStateError
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "new", e.Role)
	assert.Equal(t, "bogus_state", e.State)

	_, err = volstate.Validate(volstate.DomainVolume, "bogus:meta", "also_bogus")
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "old", e.Role)
	assert.Equal(t, "bogus", e.State)

	// The empty label is only known to the migration domain.
	_, err = volstate.Validate(volstate.DomainVolume, "", volstate.VolumeAvailable)
	assert.True(t, volstate.IsUnknownStateError(err))
}

func TestValidateUnknownDomain(t *testing.T) {
	t.Parallel()

	_, err := volstate.Validate(volstate.Domain(42), volstate.VolumeCreating, volstate.VolumeAvailable)
	assert.True(t, volstate.IsUnknownDomainError(err))
	assert.ErrorIs(t, err, volstate.ErrUnknownDomain)
}

func TestVerdictString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "allow", volstate.VerdictAllow.String())
	assert.Equal(t, "ignore", volstate.VerdictIgnore.String())
	assert.Equal(t, "reject", volstate.VerdictReject.String())
}

func TestVerdictText(t *testing.T) {
	t.Parallel()

	for _, v := range []volstate.Verdict{volstate.VerdictAllow, volstate.VerdictIgnore, volstate.VerdictReject} {
		data, err := json.Marshal(struct{ V volstate.Verdict }{v})
		require.NoError(t, err)

		var got struct{ V volstate.Verdict }
		require.NoError(t, json.Unmarshal(data, &got), string(data))
		assert.Equal(t, v, got.V)
	}

	var v volstate.Verdict
	assert.Error(t, v.UnmarshalText([]byte("maybe")))
}

func TestValidateAnnotatedEmptyLabel(t *testing.T) {
	t.Parallel()

	v, err := volstate.Validate(volstate.DomainMigration, volstate.MigrationNone, volstate.MigrationMigrating)
	require.NoError(t, err)
	assert.Equal(t, volstate.VerdictAllow, v)

	_, err = volstate.Validate(volstate.DomainMigration, ":vol-1", volstate.MigrationMigrating)
	var e *volstate.UnknownStateError
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "old", e.Role)
	assert.Equal(t, ":vol-1", e.State)

	_, err = volstate.Validate(volstate.DomainMigration, volstate.MigrationMigrating, ":")
	assert.True(t, volstate.IsUnknownStateError(err))
}
