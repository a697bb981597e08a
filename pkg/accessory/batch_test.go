package accessory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hap-go/hap-go/pkg/engine"
	"github.com/hap-go/hap-go/pkg/hap"
)

func TestBatchRelease(t *testing.T) {
	before := outstandingBatches()

	b := acquireBatch(2)
	assert.Equal(t, before+1, outstandingBatches())

	src := []int{1, 2, 3}
	vals := b.copyValidValues(src)
	src[0] = 7
	assert.Equal(t, []int{1, 2, 3}, vals)

	b.add(engine.Descriptor{Type: hap.CharOn, Format: hap.FormatBool, Value: hap.BoolValue(true)})
	b.add(engine.Descriptor{Type: hap.CharBrightness, Format: hap.FormatInt, ValidValues: vals, OverrideValidValues: true})
	descs := b.descs
	require.Len(t, descs, 2)

	b.release()
	assert.Equal(t, before, outstandingBatches())
	assert.Zero(t, descs[0])
	assert.Zero(t, descs[1])
	assert.Equal(t, []int{0, 0, 0}, vals)
}

func TestBatchReuse(t *testing.T) {
	b := acquireBatch(4)
	b.add(engine.Descriptor{Type: hap.CharOn})
	b.copyValidValues([]int{1})
	b.release()

	b = acquireBatch(1)
	defer b.release()
	assert.Empty(t, b.descs)
	assert.Empty(t, b.validValues)
}
