package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hap-go/hap-go/pkg/hap"
)

type nopHandler struct{}

func (nopHandler) ReadValue() (hap.Value, error)          { return hap.IntValue(1), nil }
func (nopHandler) WriteValue(hap.Value) error             { return nil }
func (nopHandler) SetEventHandle(EventHandle, bool) error { return nil }

func TestDescriptorPermissions(t *testing.T) {
	read := func(owner Handler) (hap.Value, error) { return owner.ReadValue() }
	write := func(owner Handler, v hap.Value) error { return owner.WriteValue(v) }
	sub := func(owner Handler, h EventHandle, enable bool) error { return owner.SetEventHandle(h, enable) }

	tests := []struct {
		name string
		desc Descriptor
		want []string
	}{
		{"static", Descriptor{Value: hap.StringValue("Acme")}, []string{"pr"}},
		{"read notify", Descriptor{Owner: nopHandler{}, Read: read, Subscribe: sub}, []string{"pr", "ev"}},
		{"read write notify", Descriptor{Owner: nopHandler{}, Read: read, Write: write, Subscribe: sub}, []string{"pr", "pw", "ev"}},
		{"write only", Descriptor{Owner: nopHandler{}, Write: write, Subscribe: sub}, []string{"pw"}},
		{"nothing", Descriptor{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.desc.Permissions())
		})
	}
}

func TestDescriptorClone(t *testing.T) {
	d := Descriptor{
		Type:                hap.CharTargetHeatingCoolingState,
		OverrideValidValues: true,
		ValidValues:         []int{0, 1, 3},
	}

	c := d.Clone()
	d.ValidValues[0] = 99

	assert.Equal(t, []int{0, 1, 3}, c.ValidValues)
	assert.True(t, c.OverrideValidValues)
	assert.Equal(t, hap.CharTargetHeatingCoolingState, c.Type)
}

func TestDescriptorCloneNilValidValues(t *testing.T) {
	c := Descriptor{}.Clone()
	assert.Nil(t, c.ValidValues)
}
