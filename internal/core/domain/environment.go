package domain

import "strings"

// Facility is the contact card of the physical site behind an environment.
type Facility struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// DefaultFacility is used for environments without their own contact card.
var DefaultFacility = Facility{
	Name:  "NIEMI BIL",
	Email: "noreply@niemibil.se",
	Phone: "0920-23 00 88",
}

// Environment is one independently hosted legacy database instance.
type Environment struct {
	// ID is the upper-case environment name, e.g. "NIE2V".
	ID string `json:"id"`

	// DSN is the driver connection string. Never serialised.
	DSN string `json:"-"`

	Facility Facility `json:"facility"`

	// Enabled environments take part in "all environments" fan-outs.
	Enabled bool `json:"enabled"`
}

// Environment ids of the known facilities.
const (
	EnvSpantgatan = "NIE2V"
	EnvUmea       = "NIEM3"
	EnvSkelleftea = "NIEM4"
	EnvKiruna     = "NIEM5"
	EnvUppsala    = "NIEM6"
	EnvGavle      = "NIEM7"
	EnvBanvagen   = "NIEMI"
)

// DefaultEnvironmentID is used when a single-environment operation names none.
const DefaultEnvironmentID = EnvSpantgatan

// KnownEnvironments returns the built-in environment table without DSNs.
// NIEM7 and NIEMI are sales-only sites: disabled by default and without a
// card of their own, so they present DefaultFacility unless configured.
func KnownEnvironments() []Environment {
	return []Environment{
		{ID: EnvSpantgatan, Enabled: true, Facility: Facility{Name: "Spantgatan", Email: "verkstad.spantgatan@niemibil.se", Phone: "0920-830 60"}},
		{ID: EnvUmea, Enabled: true, Facility: Facility{Name: "Umeå", Email: "verkstad.umea@niemibil.se", Phone: "090-428 88"}},
		{ID: EnvSkelleftea, Enabled: true, Facility: Facility{Name: "Skellefteå", Email: "verkstad.skelleftea@niemibil.se", Phone: "0910-548 50"}},
		{ID: EnvKiruna, Enabled: true, Facility: Facility{Name: "Kiruna", Email: "kiruna@niemibil.se", Phone: "0980-642 00"}},
		{ID: EnvUppsala, Enabled: true, Facility: Facility{Name: "Uppsala", Email: "verkstad.uppsala@niemibil.se", Phone: "018-69 68 68"}},
		{ID: EnvGavle, Enabled: false},
		{ID: EnvBanvagen, Enabled: false},
	}
}

// NormaliseEnvironmentID trims and upper-cases an environment id.
func NormaliseEnvironmentID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
