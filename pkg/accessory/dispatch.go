package accessory

import (
	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/hap"
)

// Engine callbacks. They only forward to the owner of the descriptor.

func readCharacteristic(owner engine.Handler) (hap.Value, error) {
	return owner.ReadValue()
}

func writeCharacteristic(owner engine.Handler, v hap.Value) error {
	return owner.WriteValue(v)
}

func setCharacteristicEventHandle(owner engine.Handler, h engine.EventHandle, enable bool) error {
	return owner.SetEventHandle(h, enable)
}

// identifyRead serves the Identify characteristic, which always reads true.
func identifyRead(engine.Handler) (hap.Value, error) {
	return hap.BoolValue(true), nil
}
