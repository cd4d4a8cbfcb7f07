package odbcscan

import (
	"sync"
	"sync/atomic"
)

// Initial window for variable-length reads. Values longer than this go
// through the grow-and-retry protocol.
const varlenInitialSize = 4096

// BufferPool recycles the scratch buffers used by variable-length column
// reads, so a scan does not allocate per value.
type BufferPool struct {
	buffers sync.Pool

	// Statistics for monitoring and tuning
	gets   uint64
	puts   uint64
	misses uint64
}

// NewBufferPool creates a buffer pool.
func NewBufferPool() *BufferPool {
	p := &BufferPool{}
	p.buffers.New = func() interface{} {
		atomic.AddUint64(&p.misses, 1)
		buf := make([]byte, varlenInitialSize)
		return &buf
	}
	return p
}

// Get returns a scratch buffer of at least varlenInitialSize bytes.
func (p *BufferPool) Get() []byte {
	atomic.AddUint64(&p.gets, 1)
	return *(p.buffers.Get().(*[]byte))
}

// Put returns a scratch buffer to the pool. Oversized buffers from
// grow-and-retry reads are kept too; they make future large reads cheap.
func (p *BufferPool) Put(buf []byte) {
	if cap(buf) < varlenInitialSize {
		return
	}
	atomic.AddUint64(&p.puts, 1)
	buf = buf[:cap(buf)]
	p.buffers.Put(&buf)
}

// Stats returns pool counters since creation.
func (p *BufferPool) Stats() (gets, puts, misses uint64) {
	return atomic.LoadUint64(&p.gets), atomic.LoadUint64(&p.puts), atomic.LoadUint64(&p.misses)
}

// Shared pool for all statements.
var varlenPool = NewBufferPool()
