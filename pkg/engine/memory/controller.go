package memory

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/hap"
	"github.com/hap-go/hap-go/pkg/log"
)

// lookup returns the characteristic at aid.iid. Callers hold e.mu.
func (e *Engine) lookup(aid, iid uint64) (*charEntry, error) {
	a, ok := e.byAID[aid]
	if !ok {
		return nil, fmt.Errorf("%w: aid %d", engine.ErrUnknownAccessory, aid)
	}
	c, ok := a.chars[iid]
	if !ok {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnknownCharacteristic, aid, iid)
	}
	return c, nil
}

// Read reads a characteristic as a controller would. Characteristics
// without a read callback serve their registered value.
func (e *Engine) Read(aid, iid uint64) (hap.Value, error) {
	e.mu.Lock()
	c, err := e.lookup(aid, iid)
	if err != nil {
		e.mu.Unlock()
		return hap.Value{}, err
	}
	d := c.desc
	e.mu.Unlock()

	start := e.now()
	var v hap.Value
	switch {
	case d.Read != nil:
		v, err = d.Read(d.Owner)
	case d.Value.IsValid():
		v = d.Value
	default:
		err = fmt.Errorf("%w: %d.%d", hap.ErrNotReadable, aid, iid)
	}
	e.traceAccess(c, log.OpRead, v, err, e.now().Sub(start))
	if err != nil {
		return hap.Value{}, err
	}

	e.mu.Lock()
	c.last = v
	e.mu.Unlock()
	return v, nil
}

// Write writes a characteristic as a controller would. The value must have
// the characteristic's kind and respect its bounds and valid values.
func (e *Engine) Write(aid, iid uint64, v hap.Value) error {
	e.mu.Lock()
	c, err := e.lookup(aid, iid)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	d := c.desc
	e.mu.Unlock()

	start := e.now()
	err = checkWrite(&d, v)
	if err == nil {
		err = d.Write(d.Owner, v)
	}
	e.traceAccess(c, log.OpWrite, v, err, e.now().Sub(start))
	if err != nil {
		return err
	}

	e.mu.Lock()
	c.last = v
	e.mu.Unlock()
	return nil
}

func checkWrite(d *engine.Descriptor, v hap.Value) error {
	if d.Write == nil {
		return fmt.Errorf("%w: %s", hap.ErrNotWritable, d.Type)
	}
	if v.Kind() != d.Format.Kind() {
		return fmt.Errorf("%w: %s for %s", hap.ErrKindMismatch, v.Kind(), d.Format)
	}
	if v.Kind() == hap.KindInt || v.Kind() == hap.KindFloat {
		if d.OverrideMin && v.Slot() < d.Min.Slot() {
			return fmt.Errorf("%w: %s below minimum %s", hap.ErrOutOfRange, v, d.Min)
		}
		if d.OverrideMax && v.Slot() > d.Max.Slot() {
			return fmt.Errorf("%w: %s above maximum %s", hap.ErrOutOfRange, v, d.Max)
		}
	}
	if d.OverrideValidValues && v.Kind() == hap.KindInt && !slices.Contains(d.ValidValues, int(v.Slot())) {
		return fmt.Errorf("%w: %s not in %v", hap.ErrOutOfRange, v, d.ValidValues)
	}
	return nil
}

// Subscribe enables events for a characteristic and returns the event
// handle. Subscribing twice returns the existing handle.
func (e *Engine) Subscribe(aid, iid uint64) (engine.EventHandle, error) {
	e.mu.Lock()
	c, err := e.lookup(aid, iid)
	if err != nil {
		e.mu.Unlock()
		return "", err
	}
	if c.handle != "" {
		h := c.handle
		e.mu.Unlock()
		return h, nil
	}
	d := c.desc
	e.mu.Unlock()

	if !d.CanNotify() {
		err := fmt.Errorf("%w: %d.%d", hap.ErrNotNotifiable, aid, iid)
		e.traceAccess(c, log.OpSubscribe, hap.Value{}, err, 0)
		return "", err
	}

	h := engine.EventHandle(uuid.NewString())
	if err := d.Subscribe(d.Owner, h, true); err != nil {
		e.traceAccess(c, log.OpSubscribe, hap.Value{}, err, 0)
		return "", err
	}

	e.mu.Lock()
	c.handle = h
	e.subs[h] = c
	e.mu.Unlock()

	e.traceAccess(c, log.OpSubscribe, hap.Value{}, nil, 0)
	return h, nil
}

// Unsubscribe disables events for a characteristic. It is a no-op when the
// characteristic has no subscriber.
func (e *Engine) Unsubscribe(aid, iid uint64) error {
	e.mu.Lock()
	c, err := e.lookup(aid, iid)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	h := c.handle
	if h == "" {
		e.mu.Unlock()
		return nil
	}
	c.handle = ""
	delete(e.subs, h)
	d := c.desc
	e.mu.Unlock()

	err = d.Subscribe(d.Owner, h, false)
	e.traceAccess(c, log.OpUnsubscribe, hap.Value{}, err, 0)
	return err
}

func (e *Engine) traceAccess(c *charEntry, op log.AccessOp, v hap.Value, err error, dur time.Duration) {
	acc := &log.AccessEvent{
		Op:     op,
		IID:    c.iid,
		Type:   string(c.desc.Type),
		Value:  v.Native(),
		Status: int(hap.StatusFor(err)),
	}
	if dur > 0 {
		acc.Duration = &dur
	}
	e.emit(log.Event{
		Direction:   log.DirectionIn,
		Layer:       log.LayerController,
		Category:    log.CategoryAccess,
		AccessoryID: c.acc.info.ID,
		AID:         c.acc.aid,
		Access:      acc,
	})
}
