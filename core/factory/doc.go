// Package factory provides a small generic registry used to instantiate
// assets and metrics sinks from configuration. Modules are defined by a type
// string and a map of raw settings. Factories decode the settings into typed
// structs and return the concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[assets.Asset]()
//	reg.Register("battery", func(conf map[string]any) (assets.Asset, error) {
//	    var c assets.BatteryConfig
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return assets.NewBattery(c)
//	})
//	a, err := reg.Create(factory.ModuleConfig{Type: "battery", Name: "b1", Conf: map[string]any{"power_mw": 2}})
package factory
