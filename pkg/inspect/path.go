// Package inspect provides accessory inspection and characteristic
// manipulation utilities.
//
// The inspect package offers a unified interface for:
//   - Parsing path expressions (e.g., "1/9", "1.9" or "1/Brightness")
//   - Reading, writing and subscribing to characteristics
//   - Formatting output for display
package inspect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hap-go/hap-go/pkg/hap"
)

// Path errors.
var (
	ErrEmptyPath     = errors.New("empty path")
	ErrInvalidPath   = errors.New("invalid path format")
	ErrInvalidNumber = errors.New("invalid numeric value in path")
	ErrUnknownName   = errors.New("unknown characteristic name")
)

// Path represents a parsed inspection path.
// Format: aid[/iid] or aid[/name], with "." accepted in place of "/".
type Path struct {
	// AID is the accessory instance ID.
	AID uint64

	// IID is the characteristic instance ID. Zero when the path names the
	// characteristic by type.
	IID uint64

	// Type is set when the path names the characteristic by type instead of
	// instance ID. It resolves to the first characteristic of that type.
	Type hap.CharacteristicType

	// IsPartial indicates the path only names an accessory.
	IsPartial bool

	// Raw stores the original input string.
	Raw string
}

// ParsePath parses a path string into a Path struct.
//
// Supported formats:
//   - "aid" - partial (for listing an accessory)
//   - "aid/iid" or "aid.iid" - characteristic by instance ID
//   - "aid/Name" - first characteristic of the named type
//
// Numeric values can be decimal or hex (0x prefix).
func ParsePath(input string) (*Path, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyPath
	}

	parts := strings.FieldsFunc(input, func(r rune) bool { return r == '/' || r == '.' })
	if len(parts) == 0 || len(parts) > 2 || strings.Contains(input, "//") || strings.Contains(input, "..") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, input)
	}

	p := &Path{Raw: input}

	aid, err := parseID(parts[0])
	if err != nil {
		return nil, fmt.Errorf("aid: %w", err)
	}
	if aid == 0 {
		return nil, fmt.Errorf("aid: %w: instance IDs start at 1", ErrInvalidNumber)
	}
	p.AID = aid

	if len(parts) == 1 {
		p.IsPartial = true
		return p, nil
	}

	if iid, err := parseID(parts[1]); err == nil {
		if iid == 0 {
			return nil, fmt.Errorf("iid: %w: instance IDs start at 1", ErrInvalidNumber)
		}
		p.IID = iid
		return p, nil
	}

	typ, ok := ResolveCharacteristicName(parts[1])
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownName, parts[1])
	}
	p.Type = typ
	return p, nil
}

// String returns the path as a string.
func (p *Path) String() string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(p.AID, 10))

	switch {
	case p.IsPartial:
	case p.IID != 0:
		sb.WriteString("/")
		sb.WriteString(strconv.FormatUint(p.IID, 10))
	case p.Type != "":
		sb.WriteString("/")
		sb.WriteString(p.Type.String())
	}
	return sb.String()
}

// ResolveCharacteristicName resolves a characteristic name (case-insensitive)
// to its type. Names that are short UUIDs are not accepted here, since they
// would be ambiguous with instance IDs.
func ResolveCharacteristicName(name string) (hap.CharacteristicType, bool) {
	typ, ok := hap.ParseCharacteristicType(name)
	if !ok || strings.EqualFold(string(typ), name) {
		return "", false
	}
	return typ, true
}

// parseID parses a decimal or hex ID.
func parseID(s string) (uint64, error) {
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidNumber, s)
	}
	return v, nil
}
