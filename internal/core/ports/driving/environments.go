package driving

import "github.com/niemi-bil/infoflex-bridge/internal/core/domain"

// EnvironmentRegistry maps environment ids to their databases and facilities.
type EnvironmentRegistry interface {
	// AvailableEnvironments returns the enabled environment ids in order.
	AvailableEnvironments() []string

	// Environments returns every configured environment, enabled or not.
	Environments() []domain.Environment

	// ConnectionFor returns the environment with its connection string.
	// Fails with a ConfigurationError when the id is unknown or has no DSN.
	ConnectionFor(id string) (domain.Environment, error)

	// ResolveTargets returns the environments a query should run against.
	// A single explicit id wins over a list, which wins over all available.
	// Never returns an empty set without an error.
	ResolveTargets(explicit string, list []string) ([]string, error)

	// Facility returns the contact card of an environment, or the default.
	Facility(id string) domain.Facility
}
