package actions

import "github.com/GriffinCanCode/storesync/internal/flux"

// TabActions change the target page record of one tab.
type TabActions struct {
	NewTab              *flux.SyncAction[TabPayload]
	ExistingTabUpdated  *flux.SyncAction[TabPayload]
	GetCurrentState     *flux.SyncAction[NoPayload]
	TabRemove           *flux.SyncAction[NoPayload]
	TabVisibilityChange *flux.SyncAction[VisibilityChangePayload]
}

// DevToolActions change the devtools panel state of one tab.
type DevToolActions struct {
	SetDevToolState   *flux.SyncAction[DevToolStatusPayload]
	SetInspectElement *flux.SyncAction[InspectElementPayload]
	SetFrameURL       *flux.SyncAction[InspectFrameURLPayload]
	GetCurrentState   *flux.SyncAction[NoPayload]
}

// TabActionHub groups the actions owned by one TabContext.
type TabActionHub struct {
	Tab      *TabActions
	DevTools *DevToolActions
}

// NewTabActionHub creates a fresh set of tab actions.
func NewTabActionHub() *TabActionHub {
	return &TabActionHub{
		Tab: &TabActions{
			NewTab:              flux.NewSyncAction[TabPayload]("Tab.NewTab"),
			ExistingTabUpdated:  flux.NewSyncAction[TabPayload]("Tab.ExistingTabUpdated"),
			GetCurrentState:     flux.NewSyncAction[NoPayload]("Tab.GetCurrentState"),
			TabRemove:           flux.NewSyncAction[NoPayload]("Tab.Remove"),
			TabVisibilityChange: flux.NewSyncAction[VisibilityChangePayload]("Tab.VisibilityChange"),
		},
		DevTools: &DevToolActions{
			SetDevToolState:   flux.NewSyncAction[DevToolStatusPayload]("DevTools.SetDevToolState"),
			SetInspectElement: flux.NewSyncAction[InspectElementPayload]("DevTools.SetInspectElement"),
			SetFrameURL:       flux.NewSyncAction[InspectFrameURLPayload]("DevTools.SetFrameURL"),
			GetCurrentState:   flux.NewSyncAction[NoPayload]("DevTools.GetCurrentState"),
		},
	}
}

// UserConfigurationActions change the persisted user configuration.
type UserConfigurationActions struct {
	GetCurrentState               *flux.AsyncAction[NoPayload]
	SetTelemetryState             *flux.AsyncAction[SetTelemetryStatePayload]
	SetHighContrastMode           *flux.AsyncAction[SetHighContrastModePayload]
	SetIssueFilingService         *flux.AsyncAction[SetIssueFilingServicePayload]
	SetIssueFilingServiceProperty *flux.AsyncAction[SetIssueFilingServicePropertyPayload]
}

// FeatureFlagActions change the feature flag set.
type FeatureFlagActions struct {
	GetCurrentState   *flux.AsyncAction[NoPayload]
	SetFeatureFlag    *flux.AsyncAction[FeatureFlagPayload]
	ResetFeatureFlags *flux.AsyncAction[NoPayload]
}

// GlobalActionHub groups the actions owned by the background context. Every
// action shares one ScopeMutex.
type GlobalActionHub struct {
	UserConfiguration *UserConfigurationActions
	FeatureFlags      *FeatureFlagActions
}

// NewGlobalActionHub creates the global actions guarded by mutex.
func NewGlobalActionHub(mutex *flux.ScopeMutex) *GlobalActionHub {
	return &GlobalActionHub{
		UserConfiguration: &UserConfigurationActions{
			GetCurrentState:               flux.NewAsyncAction[NoPayload]("UserConfiguration.GetCurrentState", mutex),
			SetTelemetryState:             flux.NewAsyncAction[SetTelemetryStatePayload]("UserConfiguration.SetTelemetryState", mutex),
			SetHighContrastMode:           flux.NewAsyncAction[SetHighContrastModePayload]("UserConfiguration.SetHighContrastMode", mutex),
			SetIssueFilingService:         flux.NewAsyncAction[SetIssueFilingServicePayload]("UserConfiguration.SetIssueFilingService", mutex),
			SetIssueFilingServiceProperty: flux.NewAsyncAction[SetIssueFilingServicePropertyPayload]("UserConfiguration.SetIssueFilingServiceProperty", mutex),
		},
		FeatureFlags: &FeatureFlagActions{
			GetCurrentState:   flux.NewAsyncAction[NoPayload]("FeatureFlags.GetCurrentState", mutex),
			SetFeatureFlag:    flux.NewAsyncAction[FeatureFlagPayload]("FeatureFlags.SetFeatureFlag", mutex),
			ResetFeatureFlags: flux.NewAsyncAction[NoPayload]("FeatureFlags.ResetFeatureFlags", mutex),
		},
	}
}
