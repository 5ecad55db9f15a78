package actions

// Tab lifecycle messages, handled by the tab interpreter.
const (
	TabUpdate             = "insights/tab/update"
	TabGetCurrent         = "insights/tab/current"
	TabRemove             = "insights/tab/remove"
	TabExistingTabUpdated = "insights/targetTab/changed"
	TabVisibilityChange   = "insights/targetTab/visibilitychange"
)

// DevTools messages, handled by the tab interpreter.
const (
	DevToolsStatus          = "insights/devtools/status"
	DevToolsInspectElement  = "insights/devtools/inspect"
	DevToolsInspectFrameURL = "insights/devtools/inspectFrameUrl"
	DevToolsGet             = "insights/devtools/get"
)

// User configuration messages, handled by the global interpreter.
const (
	UserConfigGetCurrentState       = "insights/userConfig/getCurrentState"
	UserConfigSetTelemetryConfig    = "insights/userConfig/setTelemetryConfig"
	UserConfigSetHighContrast       = "insights/userConfig/setHighContrastConfig"
	UserConfigSetBugServiceConfig   = "insights/userConfig/setBugServiceConfig"
	UserConfigSetBugServiceProperty = "insights/userConfig/setBugServiceProperty"
)

// Feature flag messages, handled by the global interpreter.
const (
	FeatureFlagsGet   = "insights/featureFlags/get"
	FeatureFlagsSet   = "insights/featureFlags/set"
	FeatureFlagsReset = "insights/featureFlags/reset"
)

// TabMessageTypes lists every message the tab action creators register.
func TabMessageTypes() []string {
	return []string{
		TabUpdate,
		TabGetCurrent,
		TabRemove,
		TabExistingTabUpdated,
		TabVisibilityChange,
		DevToolsStatus,
		DevToolsInspectElement,
		DevToolsInspectFrameURL,
		DevToolsGet,
	}
}

// GlobalMessageTypes lists every message the global action creators register.
func GlobalMessageTypes() []string {
	return []string{
		UserConfigGetCurrentState,
		UserConfigSetTelemetryConfig,
		UserConfigSetHighContrast,
		UserConfigSetBugServiceConfig,
		UserConfigSetBugServiceProperty,
		FeatureFlagsGet,
		FeatureFlagsSet,
		FeatureFlagsReset,
	}
}
