package volstate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/volumekit/pkg/volstate"
)

const overridesYAML = `
volume:
  remove:
    - {from: error_extending, to: available}
  add:
    - {from: error_restoring, to: available}
micro_states:
  add:
    - {from: volume_cast, to: deleted}
`

func TestLoadOverrides(t *testing.T) {
	t.Parallel()

	o, err := volstate.LoadOverrides(strings.NewReader(overridesYAML))
	require.NoError(t, err)
	require.Contains(t, o, "volume")
	assert.Equal(t, []volstate.Transition{volstate.T("error_extending", "available")}, o["volume"].Remove)

	reg, err := volstate.NewRegistry(volstate.WithOverrides(o))
	require.NoError(t, err)

	_, err = reg.Validate(volstate.DomainVolume, volstate.VolumeErrorExtending, volstate.VolumeAvailable)
	assert.True(t, volstate.IsInvalidTransitionError(err))

	v, err := reg.Validate(volstate.DomainVolume, volstate.VolumeErrorRestoring, volstate.VolumeAvailable)
	require.NoError(t, err)
	assert.Equal(t, volstate.VerdictAllow, v)

	v, err = reg.Validate(volstate.DomainMicroState, volstate.MicroStateVolumeCast, volstate.MicroStateDeleted)
	require.NoError(t, err)
	assert.Equal(t, volstate.VerdictAllow, v)
}

func TestLoadOverridesErrors(t *testing.T) {
	t.Parallel()

	_, err := volstate.LoadOverrides(strings.NewReader("snapshot:\n  add: []\n"))
	assert.ErrorIs(t, err, volstate.ErrInvalidRegistry)
	assert.True(t, volstate.IsUnknownDomainError(err))

	_, err = volstate.LoadOverrides(strings.NewReader("volume:\n  replace: []\n"))
	assert.ErrorIs(t, err, volstate.ErrInvalidRegistry)

	o, err := volstate.LoadOverrides(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, o)

	o, err = volstate.LoadOverrides(strings.NewReader("attach:\n  add:\n    - {from: attached, to: lost}\n"))
	require.NoError(t, err)
	_, err = volstate.NewRegistry(volstate.WithOverrides(o))
	assert.ErrorIs(t, err, volstate.ErrInvalidRegistry)
}

func TestLoadOverridesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(overridesYAML), 0o600))

	o, err := volstate.LoadOverridesFile(path)
	require.NoError(t, err)
	assert.Len(t, o, 2)

	_, err = volstate.LoadOverridesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
