package odbcscan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorTypes(t *testing.T) {
	err := NewError(ErrConnection, "failed to connect")
	require.Equal(t, "odbcscan: failed to connect", err.Error())
	require.True(t, IsError(err, ErrConnection))
	require.False(t, IsError(err, ErrExec))
	require.False(t, IsError(errors.New("plain"), ErrConnection))
}

func TestDriverError(t *testing.T) {
	err := driverError(ErrDriver, "fetch row", "[08S01] link failure")
	require.Equal(t, "odbcscan: failed to fetch row: [08S01] link failure", err.Error())

	// Some drivers return no diagnostics at all.
	err = driverError(ErrDriver, "fetch row", "")
	require.Equal(t, "odbcscan: failed to fetch row", err.Error())
}

func TestBufferPoolRecycling(t *testing.T) {
	p := NewBufferPool()

	buf := p.Get()
	require.Len(t, buf, varlenInitialSize)
	p.Put(buf)

	// Undersized buffers are dropped, grown ones are kept at capacity.
	p.Put(make([]byte, 16))
	p.Put(make([]byte, 3*varlenInitialSize))

	gets, puts, misses := p.Stats()
	require.Equal(t, uint64(1), gets)
	require.Equal(t, uint64(2), puts)
	require.Equal(t, uint64(1), misses)
}
