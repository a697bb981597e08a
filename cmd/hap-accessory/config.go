package main

import (
	"errors"
	"flag"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/hap-go/hap-go/pkg/hap"
	"github.com/hap-go/hap-go/pkg/mqttbridge"
)

// Engine names.
const (
	EngineHAP    = "hap"
	EngineMemory = "memory"
)

// Example accessory names.
const (
	ExampleLightbulb  = "lightbulb"
	ExampleSensor     = "sensor"
	ExampleSwitch     = "switch"
	ExampleThermostat = "thermostat"
)

// EnvPrefix prefixes every environment variable read by hap-accessory.
const EnvPrefix = "HAP_"

// Config holds the accessory configuration. Values are merged in this order:
// defaults, YAML file, environment, command-line flags.
type Config struct {
	Engine  string `yaml:"engine" env:"ENGINE"`
	Example string `yaml:"example" env:"EXAMPLE"`

	// Accessory identity
	Name         string `yaml:"name" env:"NAME"`
	ID           string `yaml:"id" env:"ID"`
	SetupCode    string `yaml:"setup_code" env:"SETUP_CODE"`
	Manufacturer string `yaml:"manufacturer" env:"MANUFACTURER"`
	Model        string `yaml:"model" env:"MODEL"`
	SerialNumber string `yaml:"serial_number" env:"SERIAL_NUMBER"`

	// hap engine settings
	Port        int    `yaml:"port" env:"PORT"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH"`

	// Trace is the .haplog file path. Empty disables tracing.
	Trace    string `yaml:"trace" env:"TRACE"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	Debug    bool   `yaml:"debug" env:"DEBUG"`

	MQTT MQTTConfig `yaml:"mqtt" envPrefix:"MQTT_"`
}

// MQTTConfig configures the optional MQTT mirror.
type MQTTConfig struct {
	// Broker enables the bridge when set.
	Broker        string `yaml:"broker" env:"BROKER"`
	ClientID      string `yaml:"client_id" env:"CLIENT_ID"`
	Username      string `yaml:"username" env:"USERNAME"`
	Password      string `yaml:"password" env:"PASSWORD"`
	TopicPrefix   string `yaml:"topic_prefix" env:"TOPIC_PREFIX"`
	TLSSkipVerify bool   `yaml:"tls_skip_verify" env:"TLS_SKIP_VERIFY"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	mq := mqttbridge.DefaultConfig()
	return Config{
		Engine:       EngineMemory,
		Example:      ExampleLightbulb,
		SetupCode:    "031-45-154",
		Manufacturer: "hap-go",
		StoragePath:  "hap-data",
		LogLevel:     "info",
		MQTT: MQTTConfig{
			ClientID:    mq.ClientID,
			TopicPrefix: mq.TopicPrefix,
		},
	}
}

// LoadConfig builds the configuration from args (without the program name)
// and environ. A nil environ reads the process environment.
func LoadConfig(args []string, environ map[string]string, stderr io.Writer) (Config, error) {
	cfg := DefaultConfig()

	var flags Config
	var configFile string
	fs := flag.NewFlagSet("hap-accessory", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&configFile, "config", "", "YAML configuration file")
	fs.StringVar(&flags.Engine, "engine", cfg.Engine, "Engine: hap, memory")
	fs.StringVar(&flags.Example, "example", cfg.Example, "Example accessory: lightbulb, sensor, switch, thermostat")
	fs.StringVar(&flags.Name, "name", "", "Accessory name (defaults to the example name)")
	fs.StringVar(&flags.ID, "id", "", "Accessory ID, e.g. 11:22:33:44:55:66 (generated if empty)")
	fs.StringVar(&flags.SetupCode, "setup-code", cfg.SetupCode, "Setup code XXX-XX-XXX")
	fs.StringVar(&flags.Manufacturer, "manufacturer", cfg.Manufacturer, "Manufacturer name")
	fs.StringVar(&flags.Model, "model", "", "Model name")
	fs.StringVar(&flags.SerialNumber, "serial", "", "Serial number")
	fs.IntVar(&flags.Port, "port", 0, "Listen port for the hap engine (0 picks one)")
	fs.StringVar(&flags.StoragePath, "storage", cfg.StoragePath, "Pairing storage directory for the hap engine")
	fs.StringVar(&flags.Trace, "trace", "", "Write an engine trace to this .haplog file")
	fs.StringVar(&flags.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.BoolVar(&flags.Debug, "debug", false, "Enable brutella/hap debug output")
	fs.StringVar(&flags.MQTT.Broker, "mqtt", "", "MQTT broker URL, e.g. tcp://localhost:1883")
	fs.StringVar(&flags.MQTT.TopicPrefix, "mqtt-prefix", cfg.MQTT.TopicPrefix, "MQTT topic prefix")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if configFile == "" {
		configFile = lookupEnv(environ, EnvPrefix+"CONFIG")
	}
	if configFile != "" {
		if err := loadYAML(configFile, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		applyFlag(&cfg, &flags, f.Name)
	})

	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

func lookupEnv(environ map[string]string, key string) string {
	if environ == nil {
		return os.Getenv(key)
	}
	return environ[key]
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyFlag copies one explicitly set flag over the merged configuration.
func applyFlag(cfg, flags *Config, name string) {
	switch name {
	case "engine":
		cfg.Engine = flags.Engine
	case "example":
		cfg.Example = flags.Example
	case "name":
		cfg.Name = flags.Name
	case "id":
		cfg.ID = flags.ID
	case "setup-code":
		cfg.SetupCode = flags.SetupCode
	case "manufacturer":
		cfg.Manufacturer = flags.Manufacturer
	case "model":
		cfg.Model = flags.Model
	case "serial":
		cfg.SerialNumber = flags.SerialNumber
	case "port":
		cfg.Port = flags.Port
	case "storage":
		cfg.StoragePath = flags.StoragePath
	case "trace":
		cfg.Trace = flags.Trace
	case "log-level":
		cfg.LogLevel = flags.LogLevel
	case "debug":
		cfg.Debug = flags.Debug
	case "mqtt":
		cfg.MQTT.Broker = flags.MQTT.Broker
	case "mqtt-prefix":
		cfg.MQTT.TopicPrefix = flags.MQTT.TopicPrefix
	}
}

func (c *Config) applyDefaults() {
	c.Engine = strings.ToLower(c.Engine)
	c.Example = strings.ToLower(c.Example)
	if c.Name == "" {
		c.Name = "hap-go " + c.Example
	}
	if c.ID == "" {
		c.ID = accessoryID(c.Name)
	}
	if c.SerialNumber == "" {
		c.SerialNumber = strings.ReplaceAll(c.ID, ":", "")
	}
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	var errs []error

	switch c.Engine {
	case EngineHAP, EngineMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown engine: %s", c.Engine))
	}

	switch c.Example {
	case ExampleLightbulb, ExampleSensor, ExampleSwitch, ExampleThermostat:
	default:
		errs = append(errs, fmt.Errorf("unknown example: %s", c.Example))
	}

	if _, err := hap.ParseSetupCode(c.SetupCode); err != nil {
		errs = append(errs, err)
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be 0-65535, got %d", c.Port))
	}
	if c.Engine == EngineHAP && c.StoragePath == "" {
		errs = append(errs, errors.New("storage path required for the hap engine"))
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("unknown log level: %s", c.LogLevel))
	}

	return errors.Join(errs...)
}

// accessoryID derives a stable MAC-style ID from the accessory name.
func accessoryID(name string) string {
	h := fnv.New64a()
	h.Write([]byte(name))
	sum := h.Sum(nil)

	b := make([]string, 6)
	for i := range b {
		b[i] = fmt.Sprintf("%02X", sum[i])
	}
	return strings.Join(b, ":")
}
