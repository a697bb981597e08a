package memory

import (
	"slices"

	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/hap"
)

// AccessorySnapshot is a copy of one accessory database entry.
type AccessorySnapshot struct {
	AID      uint64
	Info     engine.RegistrationInfo
	Started  bool
	Services []ServiceSnapshot
}

// ServiceSnapshot is a copy of one service.
type ServiceSnapshot struct {
	IID             uint64
	Type            hap.ServiceType
	Characteristics []CharacteristicSnapshot
}

// CharacteristicSnapshot is a copy of one characteristic. Value is the last
// value seen by the engine; use Engine.Read for a fresh one.
type CharacteristicSnapshot struct {
	IID         uint64
	Type        hap.CharacteristicType
	Format      hap.Format
	Permissions []string
	Value       hap.Value
	Min, Max    hap.Value
	ValidValues []int
	EventHandle engine.EventHandle
}

// Accessories returns the accessory database in registration order.
func (e *Engine) Accessories() []AccessorySnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]AccessorySnapshot, 0, len(e.accessories))
	for _, a := range e.accessories {
		out = append(out, a.snapshot())
	}
	return out
}

// Accessory returns the snapshot of one accessory.
func (e *Engine) Accessory(aid uint64) (AccessorySnapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.byAID[aid]
	if !ok {
		return AccessorySnapshot{}, false
	}
	return a.snapshot(), true
}

// Characteristic returns the snapshot of the characteristic at aid.iid.
func (e *Engine) Characteristic(aid, iid uint64) (CharacteristicSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, err := e.lookup(aid, iid)
	if err != nil {
		return CharacteristicSnapshot{}, err
	}
	return c.snapshot(), nil
}

// Find returns the instance ID of the first characteristic of the given
// type, or false.
func (e *Engine) Find(aid uint64, typ hap.CharacteristicType) (uint64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.byAID[aid]
	if !ok {
		return 0, false
	}
	for _, s := range a.services {
		for _, c := range s.chars {
			if c.desc.Type == typ {
				return c.iid, true
			}
		}
	}
	return 0, false
}

func (a *accessoryEntry) snapshot() AccessorySnapshot {
	s := AccessorySnapshot{AID: a.aid, Info: a.info, Started: a.initDone}
	for _, svc := range a.services {
		ss := ServiceSnapshot{IID: svc.iid, Type: svc.typ}
		for _, c := range svc.chars {
			ss.Characteristics = append(ss.Characteristics, c.snapshot())
		}
		s.Services = append(s.Services, ss)
	}
	return s
}

func (c *charEntry) snapshot() CharacteristicSnapshot {
	cs := CharacteristicSnapshot{
		IID:         c.iid,
		Type:        c.desc.Type,
		Format:      c.desc.Format,
		Permissions: c.desc.Permissions(),
		Value:       c.last,
		EventHandle: c.handle,
	}
	if c.desc.OverrideMin {
		cs.Min = c.desc.Min
	}
	if c.desc.OverrideMax {
		cs.Max = c.desc.Max
	}
	if c.desc.OverrideValidValues {
		cs.ValidValues = slices.Clone(c.desc.ValidValues)
	}
	return cs
}
