package hapserver

import (
	"net/http"
	"slices"
	"sync/atomic"

	hapchar "github.com/brutella/hap/characteristic"

	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/hap"
)

// remoteChar is a brutella characteristic bound to a descriptor.
type remoteChar struct {
	*hapchar.C

	// writes counts controller writes being forwarded to the adapter.
	// brutella/hap stores the written value and notifies the other
	// controllers once the write returns.
	writes atomic.Int32
}

// inRemoteWrite reports whether a controller write is being forwarded.
func (rc *remoteChar) inRemoteWrite() bool {
	return rc.writes.Load() > 0
}

// newCharacteristic maps a descriptor to a brutella characteristic. Remote
// reads and writes are forwarded to the descriptor callbacks.
func newCharacteristic(d *engine.Descriptor) *remoteChar {
	c := hapchar.New()
	rc := &remoteChar{C: c}
	c.Type = string(d.Type)
	c.Format = string(d.Format)
	c.Permissions = d.Permissions()

	if d.Value.IsValid() {
		c.Val = toJSON(d.Value)
	}
	if d.OverrideMin {
		c.MinVal = toJSON(d.Min)
	}
	if d.OverrideMax {
		c.MaxVal = toJSON(d.Max)
	}
	if d.OverrideValidValues {
		c.ValidVals = slices.Clone(d.ValidValues)
	}

	if d.Read != nil {
		read, owner := d.Read, d.Owner
		c.ValueRequestFunc = func(*http.Request) (any, int) {
			v, err := read(owner)
			if err != nil {
				return nil, int(hap.StatusFor(err))
			}
			return toJSON(v), int(hap.StatusSuccess)
		}
	}

	kind := d.Format.Kind()
	write, owner := d.Write, d.Owner
	c.SetValueRequestFunc = func(val any, req *http.Request) (any, int) {
		// Local updates from PushEvent carry no request; the value was
		// already stored by the accessory.
		if req == nil {
			return nil, int(hap.StatusSuccess)
		}
		if write == nil {
			return nil, int(hap.StatusReadOnly)
		}
		v, err := hap.FromNative(kind, val)
		if err != nil {
			return nil, int(hap.StatusInvalidValue)
		}

		rc.writes.Add(1)
		defer rc.writes.Add(-1)
		if err := write(owner, v); err != nil {
			return nil, int(hap.StatusFor(err))
		}
		return nil, int(hap.StatusSuccess)
	}

	return rc
}

// toJSON returns the value as brutella/hap stores it: bool, int, float64
// or string. Floats are decoded from the fixed-point slot.
func toJSON(v hap.Value) any {
	switch v.Kind() {
	case hap.KindFloat:
		return float64(v.Slot()) / hap.FloatScale
	case hap.KindInvalid:
		return nil
	default:
		return v.Native()
	}
}
