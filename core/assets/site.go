package assets

import (
	"github.com/kilianp07/energylp/core/lp"
	"github.com/kilianp07/energylp/core/registry"
)

// DefaultSiteLimitMW bounds import and export when no limit is configured.
const DefaultSiteLimitMW = 10_000.0

// SiteConfig describes the grid connection.
type SiteConfig struct {
	Name          string  `json:"name"`
	ImportLimitMW float64 `json:"import_limit_mw"`
	ExportLimitMW float64 `json:"export_limit_mw"`
}

// SetDefaults fills unset fields.
func (c *SiteConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = "site"
	}
	if c.ImportLimitMW == 0 {
		c.ImportLimitMW = DefaultSiteLimitMW
	}
	if c.ExportLimitMW == 0 {
		c.ExportLimitMW = DefaultSiteLimitMW
	}
}

// Validate checks the configuration.
func (c SiteConfig) Validate() error {
	if err := checkNonNegative(c.Name, "import_limit_mw", c.ImportLimitMW); err != nil {
		return err
	}
	return checkNonNegative(c.Name, "export_limit_mw", c.ExportLimitMW)
}

// Site is the grid connection. It owns the electricity and heat balances of
// every interval, so it must constrain after all other assets registered
// their variables for that interval.
type Site struct {
	cfg SiteConfig
}

// NewSite validates cfg and returns a Site.
func NewSite(cfg SiteConfig) (*Site, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Site{cfg: cfg}, nil
}

func (s *Site) Name() string { return s.cfg.Name }

// Config returns the defaulted configuration.
func (s *Site) Config() SiteConfig { return s.cfg }

func (s *Site) CreateIntervalVariables(fc FormulationContext, i int) ([]registry.VariableSet, error) {
	p := fc.Problem
	return []registry.VariableSet{&registry.SiteInterval{
		Key:            registry.Key{Asset: s.cfg.Name, Index: i},
		ImportPowerMWh: p.Continuous(varName(s.cfg.Name, registry.ImportPower, i), 0, fc.Freq.MWToMWh(s.cfg.ImportLimitMW)),
		ExportPowerMWh: p.Continuous(varName(s.cfg.Name, registry.ExportPower, i), 0, fc.Freq.MWToMWh(s.cfg.ExportLimitMW)),
	}}, nil
}

func (s *Site) ConstrainWithinInterval(fc FormulationContext, r *registry.Registry, i int) error {
	site, err := one[*registry.SiteInterval](r, registry.CategorySite, s.cfg.Name, i)
	if err != nil {
		return err
	}
	p := fc.Problem

	in := lp.Sum(site.ImportPowerMWh).
		AddExpr(r.Flow(i, registry.ElectricGeneration)).
		AddExpr(r.Flow(i, registry.ElectricDischarge))
	out := lp.Sum(site.ExportPowerMWh).
		AddExpr(r.Flow(i, registry.ElectricLoad)).
		AddExpr(r.Flow(i, registry.ElectricCharge))
	p.Eq(varName(s.cfg.Name, "electricity_balance", i), in, out)

	p.Eq(varName(s.cfg.Name, "high_temperature_balance", i),
		r.Flow(i, registry.HighTemperatureGeneration),
		r.Flow(i, registry.HighTemperatureLoad).AddConst(fc.Data.HighTemperatureLoadMWh[i]),
	)

	p.Eq(varName(s.cfg.Name, "low_temperature_balance", i),
		r.Flow(i, registry.LowTemperatureGeneration).AddConst(fc.Data.LowTemperatureGenerationMWh[i]),
		r.Flow(i, registry.LowTemperatureLoad).AddConst(fc.Data.LowTemperatureLoadMWh[i]),
	)
	return nil
}

func (s *Site) ConstrainAfterIntervals(FormulationContext, *registry.Registry) error { return nil }
