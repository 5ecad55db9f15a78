package actions

// NoPayload is carried by messages that only trigger an action.
type NoPayload struct{}

// TabPayload describes the target page of a tab.
type TabPayload struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// VisibilityChangePayload reports that the target page was hidden or shown.
type VisibilityChangePayload struct {
	Hidden bool `json:"hidden"`
}

// DevToolStatusPayload reports whether a devtools panel is open for the tab.
type DevToolStatusPayload struct {
	Status bool `json:"status"`
}

// InspectElementPayload selects an element path for the devtools panel.
type InspectElementPayload struct {
	Target []string `json:"target"`
}

// InspectFrameURLPayload selects a frame for the devtools panel.
type InspectFrameURLPayload struct {
	FrameURL string `json:"frameUrl"`
}

// SetTelemetryStatePayload toggles telemetry collection.
type SetTelemetryStatePayload struct {
	EnableTelemetry bool `json:"enableTelemetry"`
}

// SetHighContrastModePayload toggles high contrast rendering.
type SetHighContrastModePayload struct {
	EnableHighContrast bool `json:"enableHighContrast"`
}

// SetIssueFilingServicePayload selects the issue filing service.
type SetIssueFilingServicePayload struct {
	IssueFilingServiceName string `json:"issueFilingServiceName"`
}

// SetIssueFilingServicePropertyPayload sets one property of a filing service.
type SetIssueFilingServicePropertyPayload struct {
	IssueFilingServiceName string `json:"issueFilingServiceName"`
	PropertyName           string `json:"propertyName"`
	PropertyValue          string `json:"propertyValue"`
}

// FeatureFlagPayload enables or disables one feature.
type FeatureFlagPayload struct {
	Feature string `json:"feature"`
	Enabled bool   `json:"enabled"`
}
