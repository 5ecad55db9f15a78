package stores

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/storesync/internal/actions"
	"github.com/GriffinCanCode/storesync/internal/flux"
)

// FeatureFlagStoreData maps feature names to their enabled state.
type FeatureFlagStoreData map[string]bool

var errEmptyFeature = errors.New("feature name is empty")

// FeatureFlagStore holds the global feature flags.
type FeatureFlagStore struct {
	*flux.BaseStore[FeatureFlagStoreData]

	actions   *actions.FeatureFlagActions
	defaults  FlagDefaults
	persisted FeatureFlagStoreData
}

// NewFeatureFlagStore creates the store. persisted is the last saved state,
// or nil on first start.
func NewFeatureFlagStore(flagActions *actions.FeatureFlagActions, defaults FlagDefaults, persisted []byte, opts ...flux.StoreOption) (*FeatureFlagStore, error) {
	s := &FeatureFlagStore{actions: flagActions, defaults: defaults}
	if len(persisted) > 0 {
		if err := sonic.Unmarshal(persisted, &s.persisted); err != nil {
			return nil, fmt.Errorf("failed to decode persisted %s: %w", FeatureFlagStoreName, err)
		}
	}
	s.BaseStore = flux.NewBaseStore[FeatureFlagStoreData](FeatureFlagStoreName, s, opts...)
	return s, nil
}

// DefaultState merges persisted values over the defaults, except for flags
// forced to their default.
func (s *FeatureFlagStore) DefaultState() FeatureFlagStoreData {
	state := s.defaultFlags()
	for name, enabled := range s.persisted {
		state[name] = enabled
	}
	for _, name := range s.defaults.ForceDefault {
		state[name] = s.defaults.Flags[name]
	}
	return state
}

func (s *FeatureFlagStore) AddActionListeners(store *flux.BaseStore[FeatureFlagStoreData]) {
	flux.OnAsync(store, s.actions.GetCurrentState, func(*FeatureFlagStoreData, actions.NoPayload) error {
		return nil
	})
	flux.OnAsync(store, s.actions.SetFeatureFlag, func(state *FeatureFlagStoreData, p actions.FeatureFlagPayload) error {
		if p.Feature == "" {
			return errEmptyFeature
		}
		next := make(FeatureFlagStoreData, len(*state)+1)
		for name, enabled := range *state {
			next[name] = enabled
		}
		next[p.Feature] = p.Enabled
		*state = next
		return nil
	})
	flux.OnAsync(store, s.actions.ResetFeatureFlags, func(state *FeatureFlagStoreData, _ actions.NoPayload) error {
		*state = s.defaultFlags()
		return nil
	})
}

// IsEnabled reports whether feature is on.
func (s *FeatureFlagStore) IsEnabled(feature string) bool {
	return s.GetState()[feature]
}

func (s *FeatureFlagStore) defaultFlags() FeatureFlagStoreData {
	state := make(FeatureFlagStoreData, len(s.defaults.Flags))
	for name, enabled := range s.defaults.Flags {
		state[name] = enabled
	}
	return state
}
