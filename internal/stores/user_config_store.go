package stores

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/GriffinCanCode/storesync/internal/actions"
	"github.com/GriffinCanCode/storesync/internal/flux"
)

// UserConfigurationStoreData is the persisted user configuration.
type UserConfigurationStoreData struct {
	InstallationID           string                       `json:"installationId"`
	IsFirstTime              bool                         `json:"isFirstTime"`
	EnableTelemetry          bool                         `json:"enableTelemetry"`
	EnableHighContrast       bool                         `json:"enableHighContrast"`
	LastSelectedHighContrast bool                         `json:"lastSelectedHighContrast"`
	BugService               string                       `json:"bugService"`
	BugServicePropertiesMap  map[string]map[string]string `json:"bugServicePropertiesMap"`
}

// UserConfigurationStore holds the global user configuration.
type UserConfigurationStore struct {
	*flux.BaseStore[UserConfigurationStoreData]

	actions        *actions.UserConfigurationActions
	persisted      []byte
	installationID string
}

// NewUserConfigurationStore creates the store. persisted is the last saved
// state, or nil on first start.
func NewUserConfigurationStore(configActions *actions.UserConfigurationActions, persisted []byte, opts ...flux.StoreOption) (*UserConfigurationStore, error) {
	s := &UserConfigurationStore{actions: configActions, installationID: uuid.NewString()}
	if len(persisted) > 0 {
		var probe UserConfigurationStoreData
		if err := sonic.Unmarshal(persisted, &probe); err != nil {
			return nil, fmt.Errorf("failed to decode persisted %s: %w", UserConfigurationStoreName, err)
		}
		s.persisted = persisted
	}
	s.BaseStore = flux.NewBaseStore[UserConfigurationStoreData](UserConfigurationStoreName, s, opts...)
	return s, nil
}

// DefaultState decodes the persisted configuration over the defaults. A
// missing installation id falls back to the one generated at construction.
func (s *UserConfigurationStore) DefaultState() UserConfigurationStoreData {
	state := UserConfigurationStoreData{
		IsFirstTime:             true,
		BugService:              "none",
		BugServicePropertiesMap: map[string]map[string]string{},
	}
	if len(s.persisted) > 0 {
		// validated by the constructor
		_ = sonic.Unmarshal(s.persisted, &state)
	}
	if state.InstallationID == "" {
		state.InstallationID = s.installationID
	}
	if state.BugServicePropertiesMap == nil {
		state.BugServicePropertiesMap = map[string]map[string]string{}
	}
	return state
}

func (s *UserConfigurationStore) AddActionListeners(store *flux.BaseStore[UserConfigurationStoreData]) {
	config := s.actions

	flux.OnAsync(store, config.GetCurrentState, func(*UserConfigurationStoreData, actions.NoPayload) error {
		return nil
	})
	flux.OnAsync(store, config.SetTelemetryState, func(state *UserConfigurationStoreData, p actions.SetTelemetryStatePayload) error {
		state.IsFirstTime = false
		state.EnableTelemetry = p.EnableTelemetry
		return nil
	})
	flux.OnAsync(store, config.SetHighContrastMode, func(state *UserConfigurationStoreData, p actions.SetHighContrastModePayload) error {
		state.EnableHighContrast = p.EnableHighContrast
		state.LastSelectedHighContrast = p.EnableHighContrast
		return nil
	})
	flux.OnAsync(store, config.SetIssueFilingService, func(state *UserConfigurationStoreData, p actions.SetIssueFilingServicePayload) error {
		state.BugService = p.IssueFilingServiceName
		return nil
	})
	flux.OnAsync(store, config.SetIssueFilingServiceProperty, setIssueFilingServiceProperty)
}

func setIssueFilingServiceProperty(state *UserConfigurationStoreData, p actions.SetIssueFilingServicePropertyPayload) error {
	if p.IssueFilingServiceName == "" || p.PropertyName == "" {
		return fmt.Errorf("issue filing property requires service and property names")
	}

	next := make(map[string]map[string]string, len(state.BugServicePropertiesMap)+1)
	for service, props := range state.BugServicePropertiesMap {
		next[service] = props
	}
	props := make(map[string]string, len(next[p.IssueFilingServiceName])+1)
	for k, v := range next[p.IssueFilingServiceName] {
		props[k] = v
	}
	props[p.PropertyName] = p.PropertyValue
	next[p.IssueFilingServiceName] = props
	state.BugServicePropertiesMap = next
	return nil
}
