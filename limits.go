package jactl

import (
	"log"

	"github.com/caarlos0/env/v6"

	"github.com/jaccomoc/jactl-sub011/lang/machine"
)

// Limits bounds one Thread's resource usage: how deep its reified call
// stack may grow, how many statement/expression steps it may take before
// self-cancelling, the default precision a new Decimal is created with, and
// how deep a structural comparison may recurse before giving up. These are
// engine-level operational limits, distinct from the host-level .jactlrc
// configuration file format (environmentClass, extraJars, functionClasses),
// which stays out of scope here and is consumed by this module only as
// opaque strings a caller has already parsed.
type Limits struct {
	MaxCallStackDepth int `env:"JACTL_MAX_CALL_DEPTH" envDefault:"2000"`
	MaxSteps          int `env:"JACTL_MAX_STEPS" envDefault:"0"`
	DecimalPrecision  int `env:"JACTL_DECIMAL_PRECISION" envDefault:"20"`
	MaxCompareDepth   int `env:"JACTL_MAX_COMPARE_DEPTH" envDefault:"100"`
}

// LoadLimits reads Limits from the process environment, falling back to the
// struct tag defaults for anything unset. A malformed value is reported via
// log and the defaults are used for the whole struct, since a partially
// applied limits configuration is worse than an obviously-default one.
func LoadLimits() Limits {
	l := Limits{MaxCallStackDepth: 2000, DecimalPrecision: 20, MaxCompareDepth: 100}
	if err := env.Parse(&l); err != nil {
		log.Printf("jactl: malformed limits in environment, using defaults: %v", err)
		return Limits{MaxCallStackDepth: 2000, DecimalPrecision: 20, MaxCompareDepth: 100}
	}
	return l
}

// Apply copies the limits this package's execution engine understands onto
// th. DecimalPrecision and MaxCompareDepth are carried for an embedder's own
// use (e.g. configuring how it constructs Decimal literals before handing
// them to a script) since lang/machine has no field for either yet.
func (l Limits) Apply(th *machine.Thread) {
	th.MaxCallStackDepth = l.MaxCallStackDepth
	th.MaxSteps = l.MaxSteps
}
