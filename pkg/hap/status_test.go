package hap

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Status
	}{
		{"nil", nil, StatusSuccess},
		{"not writable", ErrNotWritable, StatusReadOnly},
		{"not readable", ErrNotReadable, StatusWriteOnly},
		{"wrapped", fmt.Errorf("write 25: %w", ErrNotWritable), StatusReadOnly},
		{"events", ErrNotNotifiable, StatusNotificationNotSupported},
		{"range", ErrOutOfRange, StatusInvalidValue},
		{"invalid", ErrInvalidValue, StatusInvalidValue},
		{"kind", ErrKindMismatch, StatusInvalidValue},
		{"other", errors.New("device offline"), StatusCommunicationFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "SUCCESS", StatusSuccess.String())
	assert.Equal(t, "READ_ONLY", StatusReadOnly.String())
	assert.Equal(t, "NOTIFICATION_NOT_SUPPORTED", StatusNotificationNotSupported.String())
	assert.Equal(t, "STATUS(-1)", Status(-1).String())
	assert.Equal(t, -70404, int(StatusReadOnly))
}
