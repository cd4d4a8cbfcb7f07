//go:build !windows
// +build !windows

package odbcscan

import (
	"errors"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Driver manager sonames searched in order. dlopen resolves them against
// the system library path, so no filesystem probing is needed.
func driverManagerNames() []string {
	if runtime.GOOS == "darwin" {
		return []string{"libodbc.2.dylib", "libodbc.dylib", "libiodbc.2.dylib", "libiodbc.dylib"}
	}
	return []string{"libodbc.so.2", "libodbc.so.1", "libodbc.so", "libiodbc.so.2"}
}

// Load a dynamic library on Unix systems using purego
func loadDynamicLibrary(path string) (unsafe.Pointer, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, err
	}
	return unsafe.Pointer(handle), nil
}

// Close the library
func closeLibrary(handle unsafe.Pointer) {
	if handle != nil {
		purego.Dlclose(uintptr(handle))
	}
}

// Get a symbol from the library
func getSymbol(handle unsafe.Pointer, name string) (unsafe.Pointer, error) {
	if handle == nil {
		return nil, errors.New("invalid library handle")
	}

	sym, err := purego.Dlsym(uintptr(handle), name)
	if err != nil {
		return nil, err
	}

	return unsafe.Pointer(sym), nil
}

// Invoke a native ODBC entry point
func syscallN(fn unsafe.Pointer, args ...uintptr) uintptr {
	r, _, _ := purego.SyscallN(uintptr(fn), args...)
	return r
}
