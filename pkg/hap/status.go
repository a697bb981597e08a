package hap

import (
	"errors"
	"fmt"
)

// Access errors shared by accessories and engines.
var (
	ErrNotReadable   = errors.New("characteristic is not readable")
	ErrNotWritable   = errors.New("characteristic is not writable")
	ErrNotNotifiable = errors.New("characteristic does not support events")
	ErrOutOfRange    = errors.New("value out of range")
)

// Status is a HAP status code as returned to controllers.
type Status int

const (
	StatusSuccess                  Status = 0
	StatusInsufficientPrivileges   Status = -70401
	StatusCommunicationFailure     Status = -70402
	StatusBusy                     Status = -70403
	StatusReadOnly                 Status = -70404
	StatusWriteOnly                Status = -70405
	StatusNotificationNotSupported Status = -70406
	StatusOutOfResources           Status = -70407
	StatusTimeout                  Status = -70408
	StatusInvalidValue             Status = -70410
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusInsufficientPrivileges:
		return "INSUFFICIENT_PRIVILEGES"
	case StatusCommunicationFailure:
		return "COMMUNICATION_FAILURE"
	case StatusBusy:
		return "BUSY"
	case StatusReadOnly:
		return "READ_ONLY"
	case StatusWriteOnly:
		return "WRITE_ONLY"
	case StatusNotificationNotSupported:
		return "NOTIFICATION_NOT_SUPPORTED"
	case StatusOutOfResources:
		return "OUT_OF_RESOURCES"
	case StatusTimeout:
		return "TIMEOUT"
	case StatusInvalidValue:
		return "INVALID_VALUE"
	default:
		return fmt.Sprintf("STATUS(%d)", int(s))
	}
}

// StatusFor maps an access error to the status reported to controllers.
// Writes to a read-only characteristic are READ_ONLY, reads of a
// write-only one are WRITE_ONLY, as HAP defines them. Unknown errors are
// reported as COMMUNICATION_FAILURE.
func StatusFor(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrNotWritable):
		return StatusReadOnly
	case errors.Is(err, ErrNotReadable):
		return StatusWriteOnly
	case errors.Is(err, ErrNotNotifiable):
		return StatusNotificationNotSupported
	case errors.Is(err, ErrOutOfRange), errors.Is(err, ErrInvalidValue), errors.Is(err, ErrKindMismatch):
		return StatusInvalidValue
	default:
		return StatusCommunicationFailure
	}
}
