// Package accessory describes HomeKit accessories as typed Go values and
// registers them with a HAP engine.
//
// An accessory is built from typed characteristics. Each characteristic binds
// optional read and write functions; a nil function means the capability is
// not supported:
//
//	on := accessory.NewBool(hap.CharOn, light.IsOn, light.SetOn)
//	level := accessory.NewInt(hap.CharBrightness, light.Level, light.SetLevel,
//		accessory.WithMin(0), accessory.WithMax(100))
//
//	acc := accessory.New(eng, info, func(a *accessory.Accessory) error {
//		return a.AddService(hap.ServiceLightbulb, on, level)
//	})
//	err := acc.Register()
//
// # Lifecycle
//
// Register initializes the engine (once per process, shared by every
// accessory) and registers the accessory identity. The engine later calls
// back exactly once; the accessory then adds the accessory information
// service and runs its InitFunc, where services are added. A characteristic
// is attached when its service is added and stays attached to that accessory.
//
// # Values
//
// Values cross the engine boundary as hap.Value. Floats use the fixed-point
// encoding round(f*100); see package hap.
//
// # Change Notification
//
// A successful write, from the engine or through Typed.Write, pushes the new
// value to the engine when a controller is subscribed and then calls every
// listener registered with OnChange. Notify triggers the same notification
// for values that changed on the device side.
package accessory
