package services

import (
	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driving"
)

// Ensure EnvironmentRegistry implements the interface.
var _ driving.EnvironmentRegistry = (*EnvironmentRegistry)(nil)

// EnvironmentRegistry is an immutable, ordered table of environments.
type EnvironmentRegistry struct {
	envs      []domain.Environment
	byID      map[string]int
	defaultID string
}

// NewEnvironmentRegistry creates a registry. Ids are normalised to upper
// case; later duplicates are ignored.
func NewEnvironmentRegistry(envs []domain.Environment, defaultID string) *EnvironmentRegistry {
	r := &EnvironmentRegistry{
		byID:      make(map[string]int, len(envs)),
		defaultID: domain.NormaliseEnvironmentID(defaultID),
	}
	for _, env := range envs {
		env.ID = domain.NormaliseEnvironmentID(env.ID)
		if env.ID == "" {
			continue
		}
		if _, dup := r.byID[env.ID]; dup {
			continue
		}
		r.byID[env.ID] = len(r.envs)
		r.envs = append(r.envs, env)
	}
	if r.defaultID == "" {
		r.defaultID = domain.DefaultEnvironmentID
	}
	return r
}

// AvailableEnvironments returns the enabled environment ids in order.
func (r *EnvironmentRegistry) AvailableEnvironments() []string {
	ids := make([]string, 0, len(r.envs))
	for _, env := range r.envs {
		if env.Enabled {
			ids = append(ids, env.ID)
		}
	}
	return ids
}

// Environments returns every configured environment.
func (r *EnvironmentRegistry) Environments() []domain.Environment {
	return append([]domain.Environment(nil), r.envs...)
}

// ConnectionFor returns the environment with its connection string. An
// empty id selects the default environment.
func (r *EnvironmentRegistry) ConnectionFor(id string) (domain.Environment, error) {
	id = domain.NormaliseEnvironmentID(id)
	if id == "" {
		id = r.defaultID
	}
	i, ok := r.byID[id]
	if !ok {
		return domain.Environment{}, &domain.ConfigurationError{Environment: id, Err: domain.ErrUnknownEnvironment}
	}
	env := r.envs[i]
	if env.DSN == "" {
		return domain.Environment{}, &domain.ConfigurationError{Environment: id, Err: domain.ErrMissingConnection}
	}
	return env, nil
}

// ResolveTargets picks the environments for a query: a single explicit id,
// else the explicit list, else all enabled environments.
func (r *EnvironmentRegistry) ResolveTargets(explicit string, list []string) ([]string, error) {
	if id := domain.NormaliseEnvironmentID(explicit); id != "" {
		if _, ok := r.byID[id]; !ok {
			return nil, &domain.ConfigurationError{Environment: id, Err: domain.ErrUnknownEnvironment}
		}
		return []string{id}, nil
	}

	if len(list) > 0 {
		seen := make(map[string]bool, len(list))
		targets := make([]string, 0, len(list))
		for _, raw := range list {
			id := domain.NormaliseEnvironmentID(raw)
			if id == "" || seen[id] {
				continue
			}
			if _, ok := r.byID[id]; !ok {
				return nil, &domain.ConfigurationError{Environment: id, Err: domain.ErrUnknownEnvironment}
			}
			seen[id] = true
			targets = append(targets, id)
		}
		if len(targets) > 0 {
			return targets, nil
		}
	}

	targets := r.AvailableEnvironments()
	if len(targets) == 0 {
		return nil, &domain.ConfigurationError{Err: domain.ErrNoTargetEnvironments}
	}
	return targets, nil
}

// Facility returns the facility of an environment, or the default card.
func (r *EnvironmentRegistry) Facility(id string) domain.Facility {
	if i, ok := r.byID[domain.NormaliseEnvironmentID(id)]; ok && r.envs[i].Facility.Name != "" {
		return r.envs[i].Facility
	}
	return domain.DefaultFacility
}
