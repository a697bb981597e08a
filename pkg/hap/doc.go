// Package hap defines the HomeKit Accessory Protocol vocabulary shared by the
// adapter layer and the engines it drives.
//
// # Type Tags
//
// Characteristics and services are identified by their short HAP UUIDs
// (e.g. "25" for On, "43" for Lightbulb). Accessories carry a numeric
// category used by controllers to pick an icon and default behavior.
//
// # Values
//
// HAP engines written in C represent every characteristic value as one
// pointer-sized slot. Value makes that slot an explicit tagged union:
//
//	Kind    Slot contents
//	String  the string bytes (no slot)
//	Int     the integer itself
//	Float   round(f * 100), decoded as slot / 100
//	Bool    1 or 0
//
// The float rule is a fixed-point convention of the engine boundary and must
// be reproduced exactly: the multiplication happens in float32 and rounding is
// half away from zero. See EncodeFloat and DecodeFloat.
//
// # Setup Codes
//
// Accessories are paired with an 8-digit setup code written as XXX-XX-XXX.
// ParseSetupCode accepts both the dashed and the plain form and rejects the
// codes HAP forbids.
package hap
