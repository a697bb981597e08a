// Command hap-accessory runs one of the example HomeKit accessories.
//
// This command demonstrates a complete accessory with:
//   - Configuration from a YAML file, HAP_* environment variables and flags
//   - A choice of engines: a real HomeKit server or an in-process simulator
//   - An interactive controller simulator for the in-process engine
//   - Optional engine tracing and MQTT mirroring
//
// Usage:
//
//	hap-accessory [flags]
//
// Flags:
//
//	-engine string      Engine: hap, memory (default "memory")
//	-example string     Example accessory: lightbulb, sensor, switch, thermostat
//	-config string      YAML configuration file
//	-setup-code string  Setup code XXX-XX-XXX (default "031-45-154")
//	-port int           Listen port for the hap engine
//	-trace string       Write an engine trace to this .haplog file
//	-mqtt string        MQTT broker URL
//	-log-level string   Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Try the lightbulb in the interactive simulator
//	hap-accessory -example lightbulb
//
//	# Serve a thermostat to the Home app
//	hap-accessory -engine hap -example thermostat -storage ./thermostat-data
//
//	# Mirror a switch to MQTT and trace engine calls
//	hap-accessory -engine hap -example switch -mqtt tcp://localhost:1883 -trace switch.haplog
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/hap-go/hap-go/cmd/hap-accessory/interactive"
	"github.com/hap-go/hap-go/pkg/accessory"
	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/engine/hapserver"
	"github.com/hap-go/hap-go/pkg/engine/memory"
	"github.com/hap-go/hap-go/pkg/examples"
	"github.com/hap-go/hap-go/pkg/hap"
	"github.com/hap-go/hap-go/pkg/log"
	"github.com/hap-go/hap-go/pkg/mqttbridge"
)

func main() {
	cfg, err := LoadConfig(os.Args[1:], nil, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("hap-accessory failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg Config) error {
	level, _ := parseLevel(cfg.LogLevel)
	output := &logOutput{w: os.Stderr}
	logger := newLogger(output, level)
	slog.SetDefault(logger)

	logger.Info("hap-go accessory",
		"example", cfg.Example,
		"engine", cfg.Engine,
		"name", cfg.Name,
		"id", cfg.ID)

	trace, closeTrace, err := openTrace(cfg.Trace, logger)
	if err != nil {
		return err
	}
	defer closeTrace()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	switch cfg.Engine {
	case EngineHAP:
		return runHAP(ctx, cfg, logger, trace)
	default:
		return runMemory(ctx, cancel, cfg, logger, output, trace)
	}
}

func runHAP(ctx context.Context, cfg Config, logger *slog.Logger, trace log.Logger) error {
	hcfg := hapserver.DefaultConfig()
	hcfg.StoragePath = cfg.StoragePath
	hcfg.Debug = cfg.Debug
	hcfg.Logger = logger
	hcfg.Trace = trace
	if cfg.Port != 0 {
		hcfg.Addr = ":" + strconv.Itoa(cfg.Port)
	}
	e := hapserver.New(hcfg)

	bridge, err := startBridge(cfg, logger, trace)
	if err != nil {
		return err
	}

	var opts []accessory.Option
	if bridge != nil {
		defer bridge.Close()
		// The server adds the services when it starts, so the bridge
		// attaches from there.
		opts = append(opts, accessory.WithReady(func(a *accessory.Accessory) {
			if err := bridge.Attach(a); err != nil {
				logger.Warn("mqtt attach failed", "error", err)
			}
		}))
	}

	dev, err := newDevice(e, cfg, logger, opts...)
	if err != nil {
		return err
	}
	if err := dev.accessory.Register(); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	printSetupInfo(logger, cfg)
	err = e.ListenAndServe(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	logger.Info("goodbye")
	return err
}

func runMemory(ctx context.Context, cancel context.CancelFunc, cfg Config, logger *slog.Logger, output *logOutput, trace log.Logger) error {
	e := memory.New(memory.WithLogger(logger), memory.WithTrace(trace))

	dev, err := newDevice(e, cfg, logger)
	if err != nil {
		return err
	}
	if err := dev.accessory.Register(); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if err := e.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	bridge, err := startBridge(cfg, logger, trace)
	if err != nil {
		return err
	}
	if bridge != nil {
		defer bridge.Close()
		if err := bridge.Attach(dev.accessory); err != nil {
			return fmt.Errorf("mqtt attach: %w", err)
		}
	}

	ctrl := interactive.New(e, []*accessory.Accessory{dev.accessory}, dev.actions...)
	if err := ctrl.Open(); err != nil {
		return err
	}
	// Route log output through readline so it does not garble the prompt.
	output.Redirect(ctrl.Stdout())
	defer output.Redirect(os.Stderr)

	return ctrl.Run(ctx, cancel)
}

// parseLevel parses a log level name.
func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// logOutput is the log writer. It is redirected while the interactive
// prompt is active.
type logOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func (o *logOutput) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Write(p)
}

func (o *logOutput) Redirect(w io.Writer) {
	o.mu.Lock()
	o.w = w
	o.mu.Unlock()
}

// openTrace opens the trace file. The returned close function is never nil.
func openTrace(path string, logger *slog.Logger) (log.Logger, func(), error) {
	if path == "" {
		return log.NoopLogger{}, func() {}, nil
	}
	fl, err := log.NewFileLogger(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open trace: %w", err)
	}
	logger.Info("tracing engine calls", "file", path)
	return fl, func() {
		written, failed := fl.Stats()
		logger.Info("trace closed", "events", written, "failed", failed)
		if err := fl.Close(); err != nil {
			logger.Warn("closing trace failed", "error", err)
		}
	}, nil
}

func startBridge(cfg Config, logger *slog.Logger, trace log.Logger) (*mqttbridge.Bridge, error) {
	if cfg.MQTT.Broker == "" {
		return nil, nil
	}

	mcfg := mqttbridge.DefaultConfig()
	mcfg.BrokerURL = cfg.MQTT.Broker
	mcfg.ClientID = cfg.MQTT.ClientID
	mcfg.Username = cfg.MQTT.Username
	mcfg.Password = cfg.MQTT.Password
	mcfg.TopicPrefix = cfg.MQTT.TopicPrefix
	mcfg.TLSSkipVerify = cfg.MQTT.TLSSkipVerify

	client, err := mqttbridge.NewPahoClient(mcfg)
	if err != nil {
		return nil, fmt.Errorf("mqtt: %w", err)
	}
	logger.Info("mqtt connected", "broker", mcfg.BrokerURL, "prefix", mcfg.TopicPrefix)
	return mqttbridge.New(client, mcfg, mqttbridge.WithLogger(logger), mqttbridge.WithTrace(trace)), nil
}

func printSetupInfo(logger *slog.Logger, cfg Config) {
	logger.Info("")
	logger.Info("============================================")
	logger.Info("              PAIRING INFORMATION            ")
	logger.Info("============================================")
	logger.Info("setup", "code", cfg.SetupCode, "name", cfg.Name, "id", cfg.ID)
	logger.Info("============================================")
}

// info builds the accessory identity. The category is set by the example.
func (c *Config) info() accessory.Info {
	return accessory.Info{
		Name:         c.Name,
		ID:           c.ID,
		SetupCode:    c.SetupCode,
		Manufacturer: c.Manufacturer,
		Model:        c.Model,
		SerialNumber: c.SerialNumber,
		Port:         c.Port,
	}
}

// device is an example accessory with its device-side actions.
type device struct {
	accessory *accessory.Accessory
	actions   []interactive.Action
}

func newDevice(e engine.Engine, cfg Config, logger *slog.Logger, extra ...accessory.Option) (*device, error) {
	opts := append([]accessory.Option{accessory.WithLogger(logger)}, extra...)
	info := cfg.info()

	switch cfg.Example {
	case ExampleLightbulb:
		l := examples.NewLightbulb(e, examples.LightbulbConfig{
			Info:    info,
			Initial: examples.LightState{Brightness: 100},
			Options: opts,
		})
		l.OnStateChanged(func(s examples.LightState) {
			logger.Info("light changed", "on", s.On, "brightness", s.Brightness, "hue", s.Hue, "saturation", s.Saturation)
		})
		return &device{accessory: l.Accessory(), actions: []interactive.Action{
			{Name: "toggle", Help: "Press the wall switch", Run: noArgs(l.SimulateToggle)},
			{Name: "dim", Usage: "<percent>", Help: "Dim at the device", Run: intArg(l.SimulateDim)},
		}}, nil

	case ExampleSensor:
		s := examples.NewTemperatureSensor(e, examples.TemperatureSensorConfig{
			Info:    info,
			Initial: 21,
			Options: opts,
		})
		return &device{accessory: s.Accessory(), actions: []interactive.Action{
			{Name: "temp", Usage: "<celsius>", Help: "Report a new temperature", Run: floatArg(s.SimulateTemperature)},
		}}, nil

	case ExampleSwitch:
		s := examples.NewSwitch(e, examples.SwitchConfig{Info: info, Options: opts})
		return &device{accessory: s.Accessory(), actions: []interactive.Action{
			{Name: "press", Help: "Press the switch", Run: noArgs(s.SimulatePress)},
		}}, nil

	case ExampleThermostat:
		t := examples.NewThermostat(e, examples.ThermostatConfig{
			Info:    info,
			Initial: examples.ThermostatState{CurrentTemperature: 19, TargetTemperature: 21},
			Options: opts,
		})
		return &device{accessory: t.Accessory(), actions: []interactive.Action{
			{Name: "temp", Usage: "<celsius>", Help: "Report a new room temperature", Run: floatArg(t.SimulateTemperature)},
		}}, nil

	default:
		return nil, fmt.Errorf("unknown example: %s", cfg.Example)
	}
}

func noArgs(fn func()) func([]string) error {
	return func([]string) error {
		fn()
		return nil
	}
}

func intArg(fn func(int)) func([]string) error {
	return func(args []string) error {
		if len(args) != 1 {
			return errors.New("one argument required")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", hap.ErrInvalidValue, args[0])
		}
		fn(n)
		return nil
	}
}

func floatArg(fn func(float32)) func([]string) error {
	return func(args []string) error {
		if len(args) != 1 {
			return errors.New("one argument required")
		}
		f, err := strconv.ParseFloat(args[0], 32)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", hap.ErrInvalidValue, args[0])
		}
		fn(float32(f))
		return nil
	}
}
