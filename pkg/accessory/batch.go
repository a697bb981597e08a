package accessory

import (
	"sync"
	"sync/atomic"

	"github.com/hap-go/hap-go/pkg/engine"
)

// descriptorBatch holds the descriptors of one AddService call together
// with the valid-values copies they point to. A batch is owned by the call
// that acquired it and released when the engine call returns.
type descriptorBatch struct {
	descs       []engine.Descriptor
	validValues [][]int
}

var (
	batchPool = sync.Pool{
		New: func() any { return new(descriptorBatch) },
	}

	// liveBatches counts acquired batches that have not been released.
	liveBatches atomic.Int64
)

func acquireBatch(n int) *descriptorBatch {
	b := batchPool.Get().(*descriptorBatch)
	if cap(b.descs) < n {
		b.descs = make([]engine.Descriptor, 0, n)
	}
	liveBatches.Add(1)
	return b
}

func (b *descriptorBatch) add(d engine.Descriptor) {
	b.descs = append(b.descs, d)
}

// copyValidValues returns a batch-owned copy of vals.
func (b *descriptorBatch) copyValidValues(vals []int) []int {
	cp := make([]int, len(vals))
	copy(cp, vals)
	b.validValues = append(b.validValues, cp)
	return cp
}

// release zeroes every descriptor and valid-values copy and returns the
// batch to the pool. The batch must not be used afterwards.
func (b *descriptorBatch) release() {
	clear(b.descs)
	b.descs = b.descs[:0]
	for _, vals := range b.validValues {
		clear(vals)
	}
	clear(b.validValues)
	b.validValues = b.validValues[:0]

	liveBatches.Add(-1)
	batchPool.Put(b)
}

// outstandingBatches returns the number of batches not yet released.
func outstandingBatches() int64 {
	return liveBatches.Load()
}
