package registry

import "github.com/kilianp07/energylp/core/lp"

// Category tags a variable set with the kind of asset that produced it.
type Category string

const (
	CategorySite         Category = "site"
	CategorySpill        Category = "spill"
	CategoryBattery      Category = "battery"
	CategoryGenerator    Category = "generator"
	CategoryBoiler       Category = "boiler"
	CategoryValve        Category = "valve"
	CategoryHeatPump     Category = "heat-pump"
	CategoryEVArray      Category = "evs-array"
	CategorySpillEVArray Category = "spill-evs-array"
)

// categories fixes the iteration order of the registry.
var categories = []Category{
	CategorySite,
	CategorySpill,
	CategoryBattery,
	CategoryGenerator,
	CategoryBoiler,
	CategoryValve,
	CategoryHeatPump,
	CategoryEVArray,
	CategorySpillEVArray,
}

// Categories returns every known category in registry order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Physical flow attributes shared by every asset.
const (
	ElectricGeneration        = "electric_generation_mwh"
	ElectricLoad              = "electric_load_mwh"
	ElectricCharge            = "electric_charge_mwh"
	ElectricDischarge         = "electric_discharge_mwh"
	GasConsumption            = "gas_consumption_mwh"
	HighTemperatureGeneration = "high_temperature_generation_mwh"
	HighTemperatureLoad       = "high_temperature_load_mwh"
	LowTemperatureGeneration  = "low_temperature_generation_mwh"
	LowTemperatureLoad        = "low_temperature_load_mwh"
)

// Asset private attributes.
const (
	ImportPower             = "import_power_mwh"
	ExportPower             = "export_power_mwh"
	ElectricChargeBinary    = "electric_charge_binary"
	ElectricDischargeBinary = "electric_discharge_binary"
	ElectricLoss            = "electric_loss_mwh"
	InitialSOC              = "initial_soc_mwh"
	FinalSOC                = "final_soc_mwh"
	BinaryAttr              = "binary"
)

// FlowAttributes lists the attributes that receive a total column, in
// column order.
var FlowAttributes = []string{
	ElectricGeneration,
	ElectricLoad,
	ElectricCharge,
	ElectricDischarge,
	ElectricLoss,
	GasConsumption,
	HighTemperatureGeneration,
	HighTemperatureLoad,
	LowTemperatureGeneration,
	LowTemperatureLoad,
}

// Field is one named decision variable of a variable set.
type Field struct {
	Attribute string
	Var       *lp.Variable
	Binary    bool
}

// VariableSet is the variables one asset contributes to one interval.
type VariableSet interface {
	Category() Category
	AssetName() string
	Interval() int
	// Fields lists the variables in a stable order.
	Fields() []Field
}

// Key identifies the asset and interval of a variable set.
type Key struct {
	Asset string
	Index int
}

func (k Key) AssetName() string { return k.Asset }
func (k Key) Interval() int     { return k.Index }

func fields(fs ...Field) []Field {
	out := fs[:0]
	for _, f := range fs {
		if f.Var != nil {
			out = append(out, f)
		}
	}
	return out
}

// SiteInterval is the site grid connection of one interval.
type SiteInterval struct {
	Key
	ImportPowerMWh *lp.Variable
	ExportPowerMWh *lp.Variable
}

func (*SiteInterval) Category() Category { return CategorySite }

func (s *SiteInterval) Fields() []Field {
	return fields(
		Field{Attribute: ImportPower, Var: s.ImportPowerMWh},
		Field{Attribute: ExportPower, Var: s.ExportPowerMWh},
	)
}

// SpillInterval is the penalised source/sink that keeps the program feasible.
type SpillInterval struct {
	Key
	ElectricGenerationMWh        *lp.Variable
	ElectricLoadMWh              *lp.Variable
	HighTemperatureGenerationMWh *lp.Variable
	LowTemperatureLoadMWh        *lp.Variable
}

func (*SpillInterval) Category() Category { return CategorySpill }

func (s *SpillInterval) Fields() []Field {
	return fields(
		Field{Attribute: ElectricGeneration, Var: s.ElectricGenerationMWh},
		Field{Attribute: ElectricLoad, Var: s.ElectricLoadMWh},
		Field{Attribute: HighTemperatureGeneration, Var: s.HighTemperatureGenerationMWh},
		Field{Attribute: LowTemperatureLoad, Var: s.LowTemperatureLoadMWh},
	)
}

// BatteryInterval holds the battery dispatch of one interval.
type BatteryInterval struct {
	Key
	ElectricChargeMWh       *lp.Variable
	ElectricChargeBinary    *lp.Variable
	ElectricDischargeMWh    *lp.Variable
	ElectricDischargeBinary *lp.Variable
	ElectricLossMWh         *lp.Variable
	InitialSOCMWh           *lp.Variable
	FinalSOCMWh             *lp.Variable
}

func (*BatteryInterval) Category() Category { return CategoryBattery }

func (b *BatteryInterval) Fields() []Field {
	return fields(
		Field{Attribute: ElectricCharge, Var: b.ElectricChargeMWh},
		Field{Attribute: ElectricChargeBinary, Var: b.ElectricChargeBinary, Binary: true},
		Field{Attribute: ElectricDischarge, Var: b.ElectricDischargeMWh},
		Field{Attribute: ElectricDischargeBinary, Var: b.ElectricDischargeBinary, Binary: true},
		Field{Attribute: ElectricLoss, Var: b.ElectricLossMWh},
		Field{Attribute: InitialSOC, Var: b.InitialSOCMWh},
		Field{Attribute: FinalSOC, Var: b.FinalSOCMWh},
	)
}

// GeneratorInterval holds a CHP generator of one interval.
type GeneratorInterval struct {
	Key
	ElectricGenerationMWh        *lp.Variable
	GasConsumptionMWh            *lp.Variable
	HighTemperatureGenerationMWh *lp.Variable
	LowTemperatureGenerationMWh  *lp.Variable
	Binary                       *lp.Variable
}

func (*GeneratorInterval) Category() Category { return CategoryGenerator }

func (g *GeneratorInterval) Fields() []Field {
	return fields(
		Field{Attribute: ElectricGeneration, Var: g.ElectricGenerationMWh},
		Field{Attribute: GasConsumption, Var: g.GasConsumptionMWh},
		Field{Attribute: HighTemperatureGeneration, Var: g.HighTemperatureGenerationMWh},
		Field{Attribute: LowTemperatureGeneration, Var: g.LowTemperatureGenerationMWh},
		Field{Attribute: BinaryAttr, Var: g.Binary, Binary: true},
	)
}

// BoilerInterval holds a gas boiler of one interval. Binary is nil when the
// boiler has no minimum output.
type BoilerInterval struct {
	Key
	HighTemperatureGenerationMWh *lp.Variable
	GasConsumptionMWh            *lp.Variable
	Binary                       *lp.Variable
}

func (*BoilerInterval) Category() Category { return CategoryBoiler }

func (b *BoilerInterval) Fields() []Field {
	return fields(
		Field{Attribute: HighTemperatureGeneration, Var: b.HighTemperatureGenerationMWh},
		Field{Attribute: GasConsumption, Var: b.GasConsumptionMWh},
		Field{Attribute: BinaryAttr, Var: b.Binary, Binary: true},
	)
}

// ValveInterval moves high temperature heat to the low temperature side.
type ValveInterval struct {
	Key
	HighTemperatureLoadMWh      *lp.Variable
	LowTemperatureGenerationMWh *lp.Variable
}

func (*ValveInterval) Category() Category { return CategoryValve }

func (v *ValveInterval) Fields() []Field {
	return fields(
		Field{Attribute: HighTemperatureLoad, Var: v.HighTemperatureLoadMWh},
		Field{Attribute: LowTemperatureGeneration, Var: v.LowTemperatureGenerationMWh},
	)
}

// HeatPumpInterval holds a heat pump of one interval.
type HeatPumpInterval struct {
	Key
	ElectricLoadMWh              *lp.Variable
	HighTemperatureGenerationMWh *lp.Variable
	LowTemperatureLoadMWh        *lp.Variable
}

func (*HeatPumpInterval) Category() Category { return CategoryHeatPump }

func (h *HeatPumpInterval) Fields() []Field {
	return fields(
		Field{Attribute: ElectricLoad, Var: h.ElectricLoadMWh},
		Field{Attribute: HighTemperatureGeneration, Var: h.HighTemperatureGenerationMWh},
		Field{Attribute: LowTemperatureLoad, Var: h.LowTemperatureLoadMWh},
	)
}

// Typed keeps the sets of type T, preserving order.
func Typed[T VariableSet](sets []VariableSet) []T {
	out := make([]T, 0, len(sets))
	for _, s := range sets {
		if t, ok := s.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
