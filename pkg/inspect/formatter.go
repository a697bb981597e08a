package inspect

import (
	"fmt"
	"strings"

	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/engine/memory"
	"github.com/hap-go/hap-go/pkg/hap"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowMetadata includes format, permissions and bounds
	ShowMetadata bool

	// ShowIDs includes type UUIDs alongside names
	ShowIDs bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowMetadata: true,
		ShowIDs:      false,
		IndentWidth:  2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	indent := strings.Repeat(" ", depth*width)
	return indent + content
}

// FormatValue formats a value for display. Values of the engine's
// characteristics are shown decoded; float values keep two decimals.
func (f *Formatter) FormatValue(v hap.Value) string {
	switch v.Kind() {
	case hap.KindInvalid:
		return "null"
	case hap.KindFloat:
		n, _ := v.Float()
		return fmt.Sprintf("%.2f", n)
	default:
		return v.String()
	}
}

// FormatPermissions formats HAP permissions for display.
func FormatPermissions(perms []string) string {
	var parts []string
	for _, p := range perms {
		switch p {
		case engine.PermissionRead:
			parts = append(parts, "read")
		case engine.PermissionWrite:
			parts = append(parts, "write")
		case engine.PermissionEvents:
			parts = append(parts, "notify")
		default:
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "-")
}

// FormatTree formats the complete accessory database.
func (f *Formatter) FormatTree(accessories []memory.AccessorySnapshot) string {
	if len(accessories) == 0 {
		return "(no accessories)\n"
	}

	var sb strings.Builder
	for i := range accessories {
		sb.WriteString(f.FormatAccessory(&accessories[i]))
	}
	return sb.String()
}

// FormatAccessory formats one accessory and its services.
func (f *Formatter) FormatAccessory(a *memory.AccessorySnapshot) string {
	var sb strings.Builder

	header := fmt.Sprintf("Accessory %d: %s", a.AID, a.Info.Name)
	if a.Info.Category != 0 {
		header += fmt.Sprintf(" [%s]", a.Info.Category)
	}
	if !a.Started {
		header += " (not started)"
	}
	sb.WriteString(f.Indent(0, header) + "\n")

	for _, s := range a.Services {
		name := s.Type.String()
		if f.ShowIDs {
			name += fmt.Sprintf(" (%s)", string(s.Type))
		}
		sb.WriteString(f.Indent(1, fmt.Sprintf("[%d] %s", s.IID, name)) + "\n")

		for i := range s.Characteristics {
			sb.WriteString(f.Indent(2, f.FormatCharacteristic(&s.Characteristics[i])) + "\n")
		}
	}
	return sb.String()
}

// FormatCharacteristic formats one characteristic on a single line.
func (f *Formatter) FormatCharacteristic(c *memory.CharacteristicSnapshot) string {
	name := c.Type.String()
	if f.ShowIDs {
		name += fmt.Sprintf(" (%s)", string(c.Type))
	}

	line := fmt.Sprintf("[%d] %s = %s", c.IID, name, f.FormatValue(c.Value))
	if !f.ShowMetadata {
		return line
	}

	meta := []string{string(c.Format), FormatPermissions(c.Permissions)}
	if c.Min.IsValid() || c.Max.IsValid() {
		meta = append(meta, fmt.Sprintf("%s..%s", f.bound(c.Min), f.bound(c.Max)))
	}
	if len(c.ValidValues) > 0 {
		meta = append(meta, fmt.Sprintf("valid %v", c.ValidValues))
	}
	if c.EventHandle != "" {
		meta = append(meta, "subscribed")
	}
	return fmt.Sprintf("%s (%s)", line, strings.Join(meta, ", "))
}

func (f *Formatter) bound(v hap.Value) string {
	if !v.IsValid() {
		return ""
	}
	return f.FormatValue(v)
}
