// Package notify turns Go errors into notices and hands them to a delivery
// executor. Callers never block on the network and never see a delivery error:
// the outcome of every send is logged and counted, nothing more.
package notify

// Configuration is the read-only settings contract the service depends on.
// Implementations live in internal/config.
type Configuration interface {
	// APIKey is the project key sent in the X-API-Key header.
	APIKey() string

	// Endpoint is the tracker URL notices are POSTed to.
	Endpoint() string

	// Name is the application name, used in SERVER_SOFTWARE and as the notifier name.
	Name() string

	// Version is the application version. Empty means not configured.
	Version() string

	// Environment is reported as server.environment_name.
	Environment() string

	// ExcludedErrors lists fully-qualified error type names never reported.
	ExcludedErrors() []string
}
