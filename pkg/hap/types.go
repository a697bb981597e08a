package hap

import "strings"

// Format is the HAP value format of a characteristic.
// The string values match the "format" field of the HAP JSON schema.
type Format string

const (
	FormatBool   Format = "bool"
	FormatUInt8  Format = "uint8"
	FormatUInt16 Format = "uint16"
	FormatUInt32 Format = "uint32"
	FormatInt    Format = "int"
	FormatFloat  Format = "float"
	FormatString Format = "string"
)

// Kind returns the value kind used to carry values of this format.
func (f Format) Kind() Kind {
	switch f {
	case FormatBool:
		return KindBool
	case FormatUInt8, FormatUInt16, FormatUInt32, FormatInt:
		return KindInt
	case FormatFloat:
		return KindFloat
	case FormatString:
		return KindString
	default:
		return KindInvalid
	}
}

// CharacteristicType is the short HAP UUID of a characteristic.
type CharacteristicType string

// Characteristic types used by the accessory information service and the
// bundled example accessories.
const (
	CharIdentify                   CharacteristicType = "14"
	CharManufacturer               CharacteristicType = "20"
	CharModel                      CharacteristicType = "21"
	CharName                       CharacteristicType = "23"
	CharSerialNumber               CharacteristicType = "30"
	CharFirmwareRevision           CharacteristicType = "52"
	CharHardwareRevision           CharacteristicType = "53"
	CharOn                         CharacteristicType = "25"
	CharBrightness                 CharacteristicType = "8"
	CharHue                        CharacteristicType = "13"
	CharSaturation                 CharacteristicType = "2F"
	CharColorTemperature           CharacteristicType = "CE"
	CharCurrentTemperature         CharacteristicType = "11"
	CharTargetTemperature          CharacteristicType = "35"
	CharTemperatureDisplayUnits    CharacteristicType = "36"
	CharCurrentHeatingCoolingState CharacteristicType = "F"
	CharTargetHeatingCoolingState  CharacteristicType = "33"
	CharCurrentRelativeHumidity    CharacteristicType = "10"
	CharOutletInUse                CharacteristicType = "26"
	CharRotationSpeed              CharacteristicType = "29"
	CharActive                     CharacteristicType = "B0"
	CharStatusActive               CharacteristicType = "75"
	CharMotionDetected             CharacteristicType = "22"
	CharContactSensorState         CharacteristicType = "6A"
	CharProgrammableSwitchEvent    CharacteristicType = "73"
	CharBatteryLevel               CharacteristicType = "68"
	CharStatusLowBattery           CharacteristicType = "79"
	CharConfiguredName             CharacteristicType = "E3"
)

type characteristicInfo struct {
	name   string
	format Format
}

var characteristicTable = map[CharacteristicType]characteristicInfo{
	CharIdentify:                   {"Identify", FormatBool},
	CharManufacturer:               {"Manufacturer", FormatString},
	CharModel:                      {"Model", FormatString},
	CharName:                       {"Name", FormatString},
	CharSerialNumber:               {"SerialNumber", FormatString},
	CharFirmwareRevision:           {"FirmwareRevision", FormatString},
	CharHardwareRevision:           {"HardwareRevision", FormatString},
	CharOn:                         {"On", FormatBool},
	CharBrightness:                 {"Brightness", FormatInt},
	CharHue:                        {"Hue", FormatFloat},
	CharSaturation:                 {"Saturation", FormatFloat},
	CharColorTemperature:           {"ColorTemperature", FormatUInt32},
	CharCurrentTemperature:         {"CurrentTemperature", FormatFloat},
	CharTargetTemperature:          {"TargetTemperature", FormatFloat},
	CharTemperatureDisplayUnits:    {"TemperatureDisplayUnits", FormatUInt8},
	CharCurrentHeatingCoolingState: {"CurrentHeatingCoolingState", FormatUInt8},
	CharTargetHeatingCoolingState:  {"TargetHeatingCoolingState", FormatUInt8},
	CharCurrentRelativeHumidity:    {"CurrentRelativeHumidity", FormatFloat},
	CharOutletInUse:                {"OutletInUse", FormatBool},
	CharRotationSpeed:              {"RotationSpeed", FormatFloat},
	CharActive:                     {"Active", FormatUInt8},
	CharStatusActive:               {"StatusActive", FormatBool},
	CharMotionDetected:             {"MotionDetected", FormatBool},
	CharContactSensorState:         {"ContactSensorState", FormatUInt8},
	CharProgrammableSwitchEvent:    {"ProgrammableSwitchEvent", FormatUInt8},
	CharBatteryLevel:               {"BatteryLevel", FormatUInt8},
	CharStatusLowBattery:           {"StatusLowBattery", FormatUInt8},
	CharConfiguredName:             {"ConfiguredName", FormatString},
}

// String returns the characteristic name, or the raw UUID for unknown types.
func (t CharacteristicType) String() string {
	if info, ok := characteristicTable[t]; ok {
		return info.name
	}
	return string(t)
}

// Format returns the default HAP format for the characteristic type.
// Unknown types return the empty format; callers supply the format from the
// value kind instead.
func (t CharacteristicType) Format() Format {
	return characteristicTable[t].format
}

// IsKnown reports whether the type is in the built-in table.
func (t CharacteristicType) IsKnown() bool {
	_, ok := characteristicTable[t]
	return ok
}

// ParseCharacteristicType resolves a characteristic name such as
// "CurrentTemperature" (case-insensitive) or a short UUID of a known type.
func ParseCharacteristicType(name string) (CharacteristicType, bool) {
	if t := CharacteristicType(strings.ToUpper(name)); t.IsKnown() {
		return t, true
	}
	for t, info := range characteristicTable {
		if strings.EqualFold(info.name, name) {
			return t, true
		}
	}
	return "", false
}

// ServiceType is the short HAP UUID of a service.
type ServiceType string

const (
	ServiceAccessoryInformation        ServiceType = "3E"
	ServiceProtocolInformation         ServiceType = "A2"
	ServiceLightbulb                   ServiceType = "43"
	ServiceSwitch                      ServiceType = "49"
	ServiceOutlet                      ServiceType = "47"
	ServiceFan                         ServiceType = "B7"
	ServiceThermostat                  ServiceType = "4A"
	ServiceTemperatureSensor           ServiceType = "8A"
	ServiceHumiditySensor              ServiceType = "82"
	ServiceMotionSensor                ServiceType = "85"
	ServiceContactSensor               ServiceType = "80"
	ServiceLockMechanism               ServiceType = "45"
	ServiceStatelessProgrammableSwitch ServiceType = "89"
	ServiceBattery                     ServiceType = "96"
)

var serviceNames = map[ServiceType]string{
	ServiceAccessoryInformation:        "AccessoryInformation",
	ServiceProtocolInformation:         "ProtocolInformation",
	ServiceLightbulb:                   "Lightbulb",
	ServiceSwitch:                      "Switch",
	ServiceOutlet:                      "Outlet",
	ServiceFan:                         "Fan",
	ServiceThermostat:                  "Thermostat",
	ServiceTemperatureSensor:           "TemperatureSensor",
	ServiceHumiditySensor:              "HumiditySensor",
	ServiceMotionSensor:                "MotionSensor",
	ServiceContactSensor:               "ContactSensor",
	ServiceLockMechanism:               "LockMechanism",
	ServiceStatelessProgrammableSwitch: "StatelessProgrammableSwitch",
	ServiceBattery:                     "Battery",
}

// String returns the service name, or the raw UUID for unknown types.
func (t ServiceType) String() string {
	if name, ok := serviceNames[t]; ok {
		return name
	}
	return string(t)
}

// Category is the HAP accessory category.
type Category uint8

const (
	CategoryOther              Category = 1
	CategoryBridge             Category = 2
	CategoryFan                Category = 3
	CategoryGarageDoorOpener   Category = 4
	CategoryLightbulb          Category = 5
	CategoryDoorLock           Category = 6
	CategoryOutlet             Category = 7
	CategorySwitch             Category = 8
	CategoryThermostat         Category = 9
	CategorySensor             Category = 10
	CategorySecuritySystem     Category = 11
	CategoryDoor               Category = 12
	CategoryWindow             Category = 13
	CategoryWindowCovering     Category = 14
	CategoryProgrammableSwitch Category = 15
	CategoryIPCamera           Category = 17
	CategoryAirPurifier        Category = 19
	CategoryHeater             Category = 20
	CategoryAirConditioner     Category = 21
	CategoryHumidifier         Category = 22
	CategoryDehumidifier       Category = 23
	CategorySprinkler          Category = 28
	CategoryFaucet             Category = 29
	CategoryTelevision         Category = 31
)

var categoryNames = map[Category]string{
	CategoryOther:              "OTHER",
	CategoryBridge:             "BRIDGE",
	CategoryFan:                "FAN",
	CategoryGarageDoorOpener:   "GARAGE_DOOR_OPENER",
	CategoryLightbulb:          "LIGHTBULB",
	CategoryDoorLock:           "DOOR_LOCK",
	CategoryOutlet:             "OUTLET",
	CategorySwitch:             "SWITCH",
	CategoryThermostat:         "THERMOSTAT",
	CategorySensor:             "SENSOR",
	CategorySecuritySystem:     "SECURITY_SYSTEM",
	CategoryDoor:               "DOOR",
	CategoryWindow:             "WINDOW",
	CategoryWindowCovering:     "WINDOW_COVERING",
	CategoryProgrammableSwitch: "PROGRAMMABLE_SWITCH",
	CategoryIPCamera:           "IP_CAMERA",
	CategoryAirPurifier:        "AIR_PURIFIER",
	CategoryHeater:             "HEATER",
	CategoryAirConditioner:     "AIR_CONDITIONER",
	CategoryHumidifier:         "HUMIDIFIER",
	CategoryDehumidifier:       "DEHUMIDIFIER",
	CategorySprinkler:          "SPRINKLER",
	CategoryFaucet:             "FAUCET",
	CategoryTelevision:         "TELEVISION",
}

// String returns the category name.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseCategory resolves a category name (case-insensitive, e.g. "lightbulb"
// or "garage-door-opener").
func ParseCategory(name string) (Category, bool) {
	name = strings.ReplaceAll(name, "-", "_")
	for c, n := range categoryNames {
		if strings.EqualFold(n, name) {
			return c, true
		}
	}
	return 0, false
}
