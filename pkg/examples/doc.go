// Package examples provides reference accessories demonstrating how to build
// HomeKit accessories with the hap-go library.
//
// The example implementations show:
//   - Accessory construction from Info and an init function
//   - Typed characteristics bound to the state of a Go struct
//   - Bounds and valid values for numeric characteristics
//   - Announcing physical state changes with Notify
//
// Available examples:
//   - Lightbulb: a color lightbulb (On, Brightness, Hue, Saturation)
//   - TemperatureSensor: a read-only float sensor with bounds
//   - Switch: a plain on/off switch
//   - Thermostat: heating and cooling modes with valid values
//
// These examples can serve as templates for real accessory implementations.
package examples
