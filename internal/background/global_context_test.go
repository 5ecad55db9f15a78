package background

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/storesync/internal/actions"
	"github.com/GriffinCanCode/storesync/internal/persistence"
	"github.com/GriffinCanCode/storesync/internal/stores"
)

func newSnapshots(t *testing.T, path string) *persistence.Store {
	t.Helper()
	snapshots, err := persistence.NewStore(path)
	require.NoError(t, err)
	t.Cleanup(snapshots.Close)
	return snapshots
}

func TestGlobalContextRegistersEveryMessage(t *testing.T) {
	global, err := NewGlobalContext(GlobalOptions{FlagDefaults: stores.BuiltinFlagDefaults()})
	require.NoError(t, err)

	require.NoError(t, global.Interpreter.Validate(actions.GlobalMessageTypes()...))
	assert.True(t, global.Interpreter.Handles("insights/store/state/current/"+stores.FeatureFlagStoreName))
	assert.True(t, global.Interpreter.Handles("insights/store/state/current/"+stores.UserConfigurationStoreName))
}

func TestGlobalContextPersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "global.snap")

	first, err := NewGlobalContext(GlobalOptions{
		FlagDefaults: stores.BuiltinFlagDefaults(),
		Snapshots:    newSnapshots(t, path),
	})
	require.NoError(t, err)

	installationID := first.UserConfiguration.GetState().InstallationID
	require.NotEmpty(t, installationID)

	result := first.Interpreter.Interpret(message(t, actions.FeatureFlagsSet, actions.FeatureFlagPayload{Feature: "debugTools", Enabled: true}, nil))
	require.True(t, result.MessageHandled)
	require.NoError(t, result.Result.Err())
	first.Teardown()

	second, err := NewGlobalContext(GlobalOptions{
		FlagDefaults: stores.BuiltinFlagDefaults(),
		Snapshots:    newSnapshots(t, path),
	})
	require.NoError(t, err)

	assert.True(t, second.FeatureFlags.IsEnabled("debugTools"))
	assert.Equal(t, installationID, second.UserConfiguration.GetState().InstallationID)
}

func TestGlobalContextStates(t *testing.T) {
	global, err := NewGlobalContext(GlobalOptions{FlagDefaults: stores.BuiltinFlagDefaults()})
	require.NoError(t, err)

	states, err := global.States()
	require.NoError(t, err)
	assert.Contains(t, states, stores.FeatureFlagStoreName)
	assert.Contains(t, states, stores.UserConfigurationStoreName)
	assert.Contains(t, string(states[stores.FeatureFlagStoreName]), `"scoping":false`)
}

func TestGlobalContextTeardownIsIdempotent(t *testing.T) {
	global, err := NewGlobalContext(GlobalOptions{})
	require.NoError(t, err)

	assert.True(t, global.Teardown())
	assert.False(t, global.Teardown())
}
