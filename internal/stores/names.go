// Package stores contains the concrete stores of the sync protocol. Tab
// stores are owned by one TabContext; global stores are owned by the
// background context and shared by every tab.
package stores

// Store names, unique within a StoreHub and used as mirror keys.
const (
	TabStoreName               = "TabStore"
	DevToolStoreName           = "DevToolStore"
	FeatureFlagStoreName       = "FeatureFlagStore"
	UserConfigurationStoreName = "UserConfigurationStore"
)
