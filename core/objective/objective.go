// Package objective builds the scalar expression minimised by the optimizer.
package objective

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kilianp07/energylp/core/intervals"
	"github.com/kilianp07/energylp/core/lp"
	"github.com/kilianp07/energylp/core/registry"
)

const (
	// DefaultSpillPenalty is charged per MWh of spilled flow.
	DefaultSpillPenalty = 1e5
	// DefaultGasCarbonIntensity is the tC/MWh of burnt gas.
	DefaultGasCarbonIntensity = 0.185

	Price  = "price"
	Carbon = "carbon"
)

// ErrUnknownObjective is returned by Lookup for an unregistered name.
var ErrUnknownObjective = errors.New("objective: unknown objective")

// Config parametrises the objective functions.
type Config struct {
	Mode               string  `json:"mode"`
	SpillPenalty       float64 `json:"spill_penalty"`
	GasCarbonIntensity float64 `json:"gas_carbon_intensity"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Mode == "" {
		c.Mode = Price
	}
	if c.SpillPenalty == 0 {
		c.SpillPenalty = DefaultSpillPenalty
	}
	if c.GasCarbonIntensity == 0 {
		c.GasCarbonIntensity = DefaultGasCarbonIntensity
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if _, err := Lookup(c.Mode); err != nil {
		return err
	}
	if c.SpillPenalty <= 0 {
		return fmt.Errorf("objective: spill_penalty must be positive, got %v", c.SpillPenalty)
	}
	return nil
}

// Func builds the objective of a sealed registry.
type Func func(r *registry.Registry, data *intervals.Data, cfg Config) (lp.Expr, error)

var objectives = map[string]Func{
	Price:  PriceObjective,
	Carbon: CarbonObjective,
}

// Lookup returns the objective registered under name.
func Lookup(name string) (Func, error) {
	f, ok := objectives[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownObjective, name, Names())
	}
	return f, nil
}

// Names lists the known objectives.
func Names() []string {
	out := make([]string, 0, len(objectives))
	for name := range objectives {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// terms selects which spill attributes are penalised.
type terms struct {
	spill    []string
	spillEVs []string
}

var (
	priceTerms = terms{
		spill:    []string{registry.ElectricGeneration, registry.HighTemperatureGeneration, registry.ElectricLoad},
		spillEVs: []string{registry.ElectricCharge, registry.ElectricDischarge},
	}
	// Carbon also penalises spilled storage flows on the generic spill and
	// every flow of the spill chargers. Heat dumping stays free in both.
	carbonTerms = terms{
		spill: []string{
			registry.ElectricGeneration, registry.HighTemperatureGeneration, registry.ElectricLoad,
			registry.ElectricCharge, registry.ElectricDischarge,
		},
		spillEVs: []string{
			registry.ElectricGeneration, registry.HighTemperatureGeneration, registry.ElectricLoad,
			registry.ElectricCharge, registry.ElectricDischarge,
		},
	}
)

// PriceObjective minimises the cost of imported electricity and gas less
// export revenue.
func PriceObjective(r *registry.Registry, data *intervals.Data, cfg Config) (lp.Expr, error) {
	return build(r, cfg, priceTerms, func(i int) (float64, float64) {
		return data.ElectricityPrices[i], data.GasPrices[i]
	})
}

// CarbonObjective minimises emissions, with gas at a constant intensity.
func CarbonObjective(r *registry.Registry, data *intervals.Data, cfg Config) (lp.Expr, error) {
	return build(r, cfg, carbonTerms, func(i int) (float64, float64) {
		return data.ElectricityCarbonIntensities[i], cfg.GasCarbonIntensity
	})
}

func build(r *registry.Registry, cfg Config, t terms, rates func(i int) (elec, gas float64)) (lp.Expr, error) {
	var obj lp.Builder
	for i := 0; i < r.Intervals(); i++ {
		site, err := r.Site(i)
		if err != nil {
			return lp.Expr{}, err
		}
		elec, gas := rates(i)
		obj.Add(site.ImportPowerMWh, elec)
		obj.Add(site.ExportPowerMWh, -elec)

		for _, s := range r.AtInterval(registry.CategorySpill, i, "") {
			penalise(&obj, s.Fields(), t.spill, cfg.SpillPenalty)
		}
		for _, s := range r.AtInterval(registry.CategorySpillEVArray, i, "") {
			penalise(&obj, s.Fields(), t.spillEVs, cfg.SpillPenalty)
		}
		for _, c := range []registry.Category{registry.CategoryGenerator, registry.CategoryBoiler} {
			for _, s := range r.AtInterval(c, i, "") {
				penalise(&obj, s.Fields(), []string{registry.GasConsumption}, gas)
			}
		}
	}
	return obj.Expr(), nil
}

func penalise(obj *lp.Builder, fields []registry.Field, attrs []string, weight float64) {
	for _, f := range fields {
		if f.Binary {
			continue
		}
		for _, a := range attrs {
			if f.Attribute == a {
				obj.Add(f.Var, weight)
			}
		}
	}
}
