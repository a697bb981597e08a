// Package engine defines the contract between the accessory adapter and a
// HAP protocol engine.
//
// The engine owns everything protocol related: pairing, sessions, the
// accessory database, event delivery to controllers. The adapter only
// registers accessories and characteristic descriptors and answers the
// engine's read, write and subscribe callbacks.
//
// # Call Sequence
//
//	Init()                                   once per process
//	RegisterAccessory(info, initFn)          once per accessory
//	  ... later, engine calls initFn() ...
//	AddAccessory(handle)                     inside initFn
//	AddServiceAndCharacteristics(...)        inside initFn, once per service
//	PushEvent(handle, eventHandle, value)    whenever a subscribed value changes
//
// # Descriptor Ownership
//
// Descriptor slices passed to AddServiceAndCharacteristics, and the
// ValidValues slices inside them, belong to the caller and are reused after
// the call returns. Engines copy what they keep (see Descriptor.Clone).
//
// # Callbacks
//
// A descriptor's Read, Write and Subscribe functions are called with the
// descriptor's Owner. A nil function means the capability is not supported.
// Engines call them on their own goroutine; the adapter does not add
// concurrency of its own.
package engine
