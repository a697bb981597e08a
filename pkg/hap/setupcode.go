package hap

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Setup code constants.
const (
	// SetupCodeLength is the number of digits in a setup code.
	SetupCodeLength = 8

	// SetupCodeMax is the maximum setup code value (99999999).
	SetupCodeMax = 99999999
)

// ErrInvalidSetupCode is returned for malformed or forbidden setup codes.
var ErrInvalidSetupCode = errors.New("invalid setup code")

// SetupCode is an 8-digit HAP setup code.
type SetupCode uint32

// forbiddenSetupCodes are rejected by HAP controllers.
var forbiddenSetupCodes = map[SetupCode]bool{
	0:        true,
	11111111: true,
	22222222: true,
	33333333: true,
	44444444: true,
	55555555: true,
	66666666: true,
	77777777: true,
	88888888: true,
	99999999: true,
	12345678: true,
	87654321: true,
}

// GenerateSetupCode generates a random setup code that HAP accepts.
func GenerateSetupCode() (SetupCode, error) {
	max := big.NewInt(SetupCodeMax + 1)
	for {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return 0, fmt.Errorf("failed to generate random setup code: %w", err)
		}
		sc := SetupCode(n.Uint64())
		if !forbiddenSetupCodes[sc] {
			return sc, nil
		}
	}
}

// ParseSetupCode parses "XXX-XX-XXX" or "XXXXXXXX".
func ParseSetupCode(s string) (SetupCode, error) {
	s = strings.TrimSpace(s)
	if len(s) == SetupCodeLength+2 {
		if s[3] != '-' || s[6] != '-' {
			return 0, fmt.Errorf("%w: expected XXX-XX-XXX", ErrInvalidSetupCode)
		}
		s = s[:3] + s[4:6] + s[7:]
	}
	if len(s) != SetupCodeLength {
		return 0, fmt.Errorf("%w: must be %d digits", ErrInvalidSetupCode, SetupCodeLength)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w: non-digit %q", ErrInvalidSetupCode, s[i])
		}
	}

	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSetupCode, err)
	}

	sc := SetupCode(n)
	if err := sc.Validate(); err != nil {
		return 0, err
	}
	return sc, nil
}

// String returns the code in XXX-XX-XXX form.
func (sc SetupCode) String() string {
	d := sc.Pin()
	return d[:3] + "-" + d[3:5] + "-" + d[5:]
}

// Pin returns the code as 8 digits without dashes.
func (sc SetupCode) Pin() string {
	return fmt.Sprintf("%08d", uint32(sc))
}

// Validate checks the range and the forbidden-code list.
func (sc SetupCode) Validate() error {
	if sc > SetupCodeMax {
		return fmt.Errorf("%w: exceeds maximum value", ErrInvalidSetupCode)
	}
	if forbiddenSetupCodes[sc] {
		return fmt.Errorf("%w: %s is not allowed", ErrInvalidSetupCode, sc)
	}
	return nil
}
