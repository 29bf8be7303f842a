// Package assets formulates the decision variables and constraints of every
// asset kind. Each asset takes part in the formulation pass in three steps:
// it creates its variables for one interval, constrains them within that
// interval, and once every interval exists adds its cross-interval
// constraints.
package assets

import (
	"errors"
	"fmt"

	"github.com/kilianp07/energylp/core/freq"
	"github.com/kilianp07/energylp/core/intervals"
	"github.com/kilianp07/energylp/core/lp"
	"github.com/kilianp07/energylp/core/registry"
)

// ErrInvalidAsset indicates an asset configuration that cannot be formulated.
var ErrInvalidAsset = errors.New("assets: invalid configuration")

// Flags toggle optional formulation behaviour.
type Flags struct {
	// AllowEVsDischarge creates EV discharge variables.
	AllowEVsDischarge bool `json:"allow_evs_discharge"`
	// FailOnSpillAssetUse turns spill use into an error during extraction.
	FailOnSpillAssetUse bool `json:"fail_on_spill_asset_use"`
	// LimitChargeVariablesToValidEvents leaves EV slots outside an active
	// charge event as the constant zero.
	LimitChargeVariablesToValidEvents bool `json:"limit_charge_variables_to_valid_events"`
}

// FormulationContext carries what every asset needs while formulating.
type FormulationContext struct {
	Problem *lp.Problem
	Data    *intervals.Data
	Freq    freq.Freq
	Flags   Flags
}

// Asset is implemented by every asset kind.
type Asset interface {
	Name() string
	// CreateIntervalVariables allocates the variables of interval i.
	CreateIntervalVariables(fc FormulationContext, i int) ([]registry.VariableSet, error)
	// ConstrainWithinInterval relates the variables of interval i.
	ConstrainWithinInterval(fc FormulationContext, r *registry.Registry, i int) error
	// ConstrainAfterIntervals links intervals once all are registered.
	ConstrainAfterIntervals(fc FormulationContext, r *registry.Registry) error
}

func varName(asset, attr string, i int) string {
	return fmt.Sprintf("%s-%s-%d", asset, attr, i)
}

func invalid(asset, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidAsset, asset, fmt.Sprintf(format, args...))
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: asset name is required", ErrInvalidAsset)
	}
	return nil
}

func checkFraction(asset, field string, v float64) error {
	if v <= 0 || v > 1 {
		return invalid(asset, "%s must be in (0, 1], got %v", field, v)
	}
	return nil
}

func checkNonNegative(asset, field string, v float64) error {
	if v < 0 {
		return invalid(asset, "%s must not be negative, got %v", field, v)
	}
	return nil
}

// one fetches the single set an asset registered for interval i.
func one[T registry.VariableSet](r *registry.Registry, c registry.Category, asset string, i int) (T, error) {
	sets := registry.Typed[T](r.AtInterval(c, i, asset))
	if len(sets) == 0 {
		var zero T
		return zero, fmt.Errorf("%w: %s %q interval %d", registry.ErrNotFound, c, asset, i)
	}
	return sets[0], nil
}

// nop supplies the no-op steps for assets without constraints of that kind.
type nop struct{}

func (nop) ConstrainWithinInterval(FormulationContext, *registry.Registry, int) error { return nil }
func (nop) ConstrainAfterIntervals(FormulationContext, *registry.Registry) error      { return nil }
