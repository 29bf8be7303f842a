package assets

import (
	"errors"
	"fmt"

	"github.com/kilianp07/energylp/core/factory"
)

// ErrUnknownAssetType is returned when a scenario names an asset type with no
// registered factory.
var ErrUnknownAssetType = errors.New("assets: unknown asset type")

var assetRegistry = factory.NewRegistry[Asset]()

// RegisterAsset adds an asset factory identified by type name.
func RegisterAsset(name string, f factory.Factory[Asset]) error {
	return assetRegistry.Register(name, f)
}

// Types lists the registered asset types.
func Types() []string { return assetRegistry.Types() }

// New builds one asset from its module configuration.
func New(cfg factory.ModuleConfig) (Asset, error) {
	a, err := assetRegistry.Create(cfg)
	if errors.Is(err, factory.ErrUnknownType) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAssetType, cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", cfg.Type, err)
	}
	return a, nil
}

// NewAll builds the assets of a scenario in order.
func NewAll(cfgs []factory.ModuleConfig) ([]Asset, error) {
	out := make([]Asset, 0, len(cfgs))
	for _, c := range cfgs {
		a, err := New(c)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func decoded[C any](build func(C) (Asset, error)) factory.Factory[Asset] {
	return func(conf map[string]any) (Asset, error) {
		var c C
		if err := factory.Decode(conf, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAsset, err)
		}
		return build(c)
	}
}

// init registers built-in asset types.
func init() {
	assetRegistry.MustRegister("site", decoded(func(c SiteConfig) (Asset, error) { return NewSite(c) }))
	assetRegistry.MustRegister("spill", decoded(func(c SpillConfig) (Asset, error) { return NewSpill(c), nil }))
	assetRegistry.MustRegister("battery", decoded(func(c BatteryConfig) (Asset, error) { return NewBattery(c) }))
	assetRegistry.MustRegister("generator", decoded(func(c GeneratorConfig) (Asset, error) { return NewGenerator(c) }))
	assetRegistry.MustRegister("boiler", decoded(func(c BoilerConfig) (Asset, error) { return NewBoiler(c) }))
	assetRegistry.MustRegister("valve", decoded(func(c ValveConfig) (Asset, error) { return NewValve(c), nil }))
	assetRegistry.MustRegister("heat-pump", decoded(func(c HeatPumpConfig) (Asset, error) { return NewHeatPump(c) }))
	assetRegistry.MustRegister("evs", decoded(func(c EVsConfig) (Asset, error) { return NewEVs(c) }))
}
