package inspect

import (
	"errors"
	"fmt"

	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/engine/memory"
	"github.com/hap-go/hap-go/pkg/hap"
)

// Inspector errors.
var (
	ErrAccessoryNotFound      = errors.New("accessory not found")
	ErrCharacteristicNotFound = errors.New("characteristic not found")
	ErrPartialPath            = errors.New("path does not name a characteristic")
)

// Controller is the controller-side view of an accessory database.
// memory.Engine implements it.
type Controller interface {
	Accessories() []memory.AccessorySnapshot
	Accessory(aid uint64) (memory.AccessorySnapshot, bool)
	Characteristic(aid, iid uint64) (memory.CharacteristicSnapshot, error)
	Find(aid uint64, typ hap.CharacteristicType) (uint64, bool)
	Read(aid, iid uint64) (hap.Value, error)
	Write(aid, iid uint64, v hap.Value) error
	Subscribe(aid, iid uint64) (engine.EventHandle, error)
	Unsubscribe(aid, iid uint64) error
}

var _ Controller = (*memory.Engine)(nil)

// Inspector provides inspection and mutation capabilities for the
// accessories of a controller.
type Inspector struct {
	ctrl Controller
}

// NewInspector creates a new Inspector for the given controller.
func NewInspector(ctrl Controller) *Inspector {
	return &Inspector{ctrl: ctrl}
}

// Tree returns the complete accessory database.
func (i *Inspector) Tree() []memory.AccessorySnapshot {
	return i.ctrl.Accessories()
}

// InspectAccessory returns the accessory named by the path.
func (i *Inspector) InspectAccessory(path *Path) (memory.AccessorySnapshot, error) {
	a, ok := i.ctrl.Accessory(path.AID)
	if !ok {
		return memory.AccessorySnapshot{}, fmt.Errorf("%w: %d", ErrAccessoryNotFound, path.AID)
	}
	return a, nil
}

// Resolve returns the instance ID of the characteristic a path names.
func (i *Inspector) Resolve(path *Path) (uint64, error) {
	if path.IsPartial {
		return 0, fmt.Errorf("%w: %s", ErrPartialPath, path)
	}
	if _, ok := i.ctrl.Accessory(path.AID); !ok {
		return 0, fmt.Errorf("%w: %d", ErrAccessoryNotFound, path.AID)
	}
	if path.IID != 0 {
		return path.IID, nil
	}
	iid, ok := i.ctrl.Find(path.AID, path.Type)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCharacteristicNotFound, path)
	}
	return iid, nil
}

// InspectCharacteristic returns the snapshot of the characteristic a path
// names.
func (i *Inspector) InspectCharacteristic(path *Path) (memory.CharacteristicSnapshot, error) {
	iid, err := i.Resolve(path)
	if err != nil {
		return memory.CharacteristicSnapshot{}, err
	}
	c, err := i.ctrl.Characteristic(path.AID, iid)
	if err != nil {
		return memory.CharacteristicSnapshot{}, fmt.Errorf("%w: %v", ErrCharacteristicNotFound, err)
	}
	return c, nil
}

// Read reads a characteristic value using a path.
func (i *Inspector) Read(path *Path) (hap.Value, memory.CharacteristicSnapshot, error) {
	c, err := i.InspectCharacteristic(path)
	if err != nil {
		return hap.Value{}, c, err
	}
	v, err := i.ctrl.Read(path.AID, c.IID)
	return v, c, err
}

// Write parses text in the characteristic's format and writes it. It returns
// the value written.
func (i *Inspector) Write(path *Path, text string) (hap.Value, error) {
	c, err := i.InspectCharacteristic(path)
	if err != nil {
		return hap.Value{}, err
	}
	v, err := hap.ParseValue(c.Format.Kind(), text)
	if err != nil {
		return hap.Value{}, err
	}
	if err := i.ctrl.Write(path.AID, c.IID, v); err != nil {
		return hap.Value{}, err
	}
	return v, nil
}

// Subscribe enables events for the characteristic a path names.
func (i *Inspector) Subscribe(path *Path) (engine.EventHandle, error) {
	iid, err := i.Resolve(path)
	if err != nil {
		return "", err
	}
	return i.ctrl.Subscribe(path.AID, iid)
}

// Unsubscribe disables events for the characteristic a path names.
func (i *Inspector) Unsubscribe(path *Path) error {
	iid, err := i.Resolve(path)
	if err != nil {
		return err
	}
	return i.ctrl.Unsubscribe(path.AID, iid)
}
