// Package interactive provides the interactive command-line controller
// simulator for hap-accessory.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/hap-go/hap-go/pkg/accessory"
	"github.com/hap-go/hap-go/pkg/engine/memory"
	"github.com/hap-go/hap-go/pkg/inspect"
)

// ErrUnknownAccessory is returned when a path names an accessory that is not
// served by this controller.
var ErrUnknownAccessory = errors.New("no such accessory")

// Action is a device-side command, such as pressing a switch. It runs on the
// accessory itself rather than through the controller.
type Action struct {
	Name  string
	Usage string
	Help  string
	Run   func(args []string) error
}

// Controller plays the role of a HomeKit controller against a memory engine.
type Controller struct {
	engine      *memory.Engine
	accessories []*accessory.Accessory
	inspector   *inspect.Inspector
	formatter   *inspect.Formatter
	actions     []Action

	out io.Writer
	rl  *readline.Instance

	// seen is the number of engine events already printed.
	seen int
}

// New creates a controller for the accessories served by e.
func New(e *memory.Engine, accessories []*accessory.Accessory, actions ...Action) *Controller {
	return &Controller{
		engine:      e,
		accessories: accessories,
		inspector:   inspect.NewInspector(e),
		formatter:   inspect.NewFormatter(),
		actions:     actions,
		out:         os.Stdout,
	}
}

// SetOutput redirects command output.
func (c *Controller) SetOutput(w io.Writer) {
	c.out = w
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Controller) Stdout() io.Writer {
	if c.rl == nil {
		return c.out
	}
	return c.rl.Stdout()
}

// Open sets up the readline prompt. Run calls it if needed.
func (c *Controller) Open() error {
	if c.rl != nil {
		return nil
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "controller> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    c.completer(),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	c.rl = rl
	c.out = rl.Stdout()
	return nil
}

// Run starts the interactive command loop.
func (c *Controller) Run(ctx context.Context, cancel context.CancelFunc) error {
	if err := c.Open(); err != nil {
		return err
	}
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return nil
		}

		if quit := c.Execute(line); quit {
			cancel()
			return nil
		}
	}
}

// Execute runs one command line and reports whether the user asked to quit.
func (c *Controller) Execute(line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "tree", "t":
		c.cmdTree(args)

	case "read", "r":
		c.cmdRead(args)

	case "write", "w":
		c.cmdWrite(args)

	case "subscribe", "sub":
		c.cmdSubscribe(args)

	case "unsubscribe", "unsub":
		c.cmdUnsubscribe(args)

	case "events", "e":
		c.cmdEvents(args)

	case "notify", "n":
		c.cmdNotify(args)

	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return true

	default:
		if a, ok := c.action(cmd); ok {
			c.runAction(a, args)
			return false
		}
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Controller) printHelp() {
	fmt.Fprintln(c.out, `
Controller Commands:
  Inspection:
    tree [aid]              - Show the accessory database
    read <path>             - Read a characteristic
    write <path> <value>    - Write a characteristic

  Events:
    subscribe <path>        - Enable events for a characteristic
    unsubscribe <path>      - Disable events for a characteristic
    events [clear]          - Show (or clear) received events
    notify <path>           - Announce the current value from the accessory`)

	if len(c.actions) > 0 {
		fmt.Fprintln(c.out, "\n  Device:")
		for _, a := range c.actions {
			usage := strings.TrimSpace(a.Name + " " + a.Usage)
			fmt.Fprintf(c.out, "    %-23s - %s\n", usage, a.Help)
		}
	}

	fmt.Fprintln(c.out, `
  General:
    help                    - Show this help
    quit                    - Exit

  Path Format:
    aid/iid or aid/name - e.g., 1/9, 1.9 or 1/Brightness`)
}

func (c *Controller) cmdTree(args []string) {
	if len(args) == 0 {
		fmt.Fprint(c.out, c.formatter.FormatTree(c.inspector.Tree()))
		return
	}

	path, err := inspect.ParsePath(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Invalid path: %v\n", err)
		return
	}
	a, err := c.inspector.InspectAccessory(path)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprint(c.out, c.formatter.FormatAccessory(&a))
}

func (c *Controller) cmdRead(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: read <path>")
		fmt.Fprintln(c.out, "  Example: read 1/Brightness")
		return
	}

	path, ok := c.parsePath(args[0])
	if !ok {
		return
	}
	v, snap, err := c.inspector.Read(path)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "%s = %s\n", snap.Type, c.formatter.FormatValue(v))
}

func (c *Controller) cmdWrite(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.out, "Usage: write <path> <value>")
		fmt.Fprintln(c.out, "  Example: write 1/On true")
		return
	}

	path, ok := c.parsePath(args[0])
	if !ok {
		return
	}
	text := strings.Trim(strings.Join(args[1:], " "), "\"'")
	if _, err := c.inspector.Write(path, text); err != nil {
		fmt.Fprintf(c.out, "Write failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "OK")
	c.printNewEvents()
}

func (c *Controller) cmdSubscribe(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: subscribe <path>")
		return
	}
	path, ok := c.parsePath(args[0])
	if !ok {
		return
	}
	h, err := c.inspector.Subscribe(path)
	if err != nil {
		fmt.Fprintf(c.out, "Subscribe failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Subscribed (handle %s)\n", h)
}

func (c *Controller) cmdUnsubscribe(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: unsubscribe <path>")
		return
	}
	path, ok := c.parsePath(args[0])
	if !ok {
		return
	}
	if err := c.inspector.Unsubscribe(path); err != nil {
		fmt.Fprintf(c.out, "Unsubscribe failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "OK")
}

func (c *Controller) cmdEvents(args []string) {
	if len(args) > 0 && args[0] == "clear" {
		c.engine.ClearEvents()
		c.seen = 0
		fmt.Fprintln(c.out, "Events cleared")
		return
	}

	events := c.engine.Events()
	if len(events) == 0 {
		fmt.Fprintln(c.out, "No events")
		return
	}
	for _, ev := range events {
		c.printEvent(ev)
	}
	c.seen = len(events)
}

func (c *Controller) cmdNotify(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: notify <path>")
		return
	}
	path, ok := c.parsePath(args[0])
	if !ok {
		return
	}
	ch, err := c.characteristic(path)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	ch.Notify()
	c.printNewEvents()
}

func (c *Controller) runAction(a Action, args []string) {
	if err := a.Run(args); err != nil {
		fmt.Fprintf(c.out, "%s failed: %v\n", a.Name, err)
		if a.Usage != "" {
			fmt.Fprintf(c.out, "Usage: %s %s\n", a.Name, a.Usage)
		}
		return
	}
	c.printNewEvents()
}

func (c *Controller) action(name string) (Action, bool) {
	for _, a := range c.actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// characteristic finds the accessory-side characteristic a path names.
func (c *Controller) characteristic(path *inspect.Path) (accessory.Characteristic, error) {
	snap, err := c.inspector.InspectCharacteristic(path)
	if err != nil {
		return nil, err
	}
	as, _ := c.engine.Accessory(path.AID)
	for _, a := range c.accessories {
		if a.Info().ID != as.Info.ID {
			continue
		}
		for _, ch := range a.Characteristics() {
			if ch.Type() == snap.Type {
				return ch, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", inspect.ErrCharacteristicNotFound, path)
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownAccessory, path.AID)
}

func (c *Controller) parsePath(s string) (*inspect.Path, bool) {
	path, err := inspect.ParsePath(s)
	if err != nil {
		fmt.Fprintf(c.out, "Invalid path: %v\n", err)
		return nil, false
	}
	return path, true
}

// printNewEvents prints the events received since the last print.
func (c *Controller) printNewEvents() {
	events := c.engine.Events()
	if c.seen > len(events) {
		c.seen = 0
	}
	for _, ev := range events[c.seen:] {
		c.printEvent(ev)
	}
	c.seen = len(events)
}

func (c *Controller) printEvent(ev memory.Event) {
	handle := string(ev.Handle)
	if len(handle) > 8 {
		handle = handle[:8]
	}
	fmt.Fprintf(c.out, "[EVENT] %d.%d %s = %s (handle %s)\n",
		ev.AID, ev.IID, ev.Type, c.formatter.FormatValue(ev.Value), handle)
}

func (c *Controller) completer() readline.AutoCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem("help"),
		readline.PcItem("tree"),
		readline.PcItem("read"),
		readline.PcItem("write"),
		readline.PcItem("subscribe"),
		readline.PcItem("unsubscribe"),
		readline.PcItem("events", readline.PcItem("clear")),
		readline.PcItem("notify"),
		readline.PcItem("quit"),
	}
	for _, a := range c.actions {
		items = append(items, readline.PcItem(a.Name))
	}
	return readline.NewPrefixCompleter(items...)
}
