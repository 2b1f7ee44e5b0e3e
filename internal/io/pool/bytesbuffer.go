package pool

import (
	"bytes"
	"sync"

	"github.com/CaioVictorMota/whitedwarf/internal/constants"
)

// BytesBuffer is there to optimize memory allocations. The filter engine
// otherwise allocates one buffer per buffered line.
var BytesBuffer = sync.Pool{
	New: func() interface{} {
		b := bytes.Buffer{}
		b.Grow(constants.LineBufferInitialCapacity)
		return &b
	},
}

// RecycleBytesBuffer recycles the buffer again.
func RecycleBytesBuffer(b *bytes.Buffer) {
	b.Reset()
	BytesBuffer.Put(b)
}
