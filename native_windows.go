//go:build windows
// +build windows

package odbcscan

import (
	"errors"
	"syscall"
	"unsafe"
)

// On Windows the driver manager ships with the OS.
func driverManagerNames() []string {
	return []string{"odbc32.dll"}
}

// Load a dynamic library on Windows systems
func loadDynamicLibrary(path string) (unsafe.Pointer, error) {
	handle, err := syscall.LoadLibrary(path)
	if err != nil {
		return nil, err
	}
	return unsafe.Pointer(uintptr(handle)), nil
}

// Close the library
func closeLibrary(handle unsafe.Pointer) {
	if handle != nil {
		syscall.FreeLibrary(syscall.Handle(uintptr(handle)))
	}
}

// Get a symbol from the library
func getSymbol(handle unsafe.Pointer, name string) (unsafe.Pointer, error) {
	if handle == nil {
		return nil, errors.New("invalid library handle")
	}

	proc, err := syscall.GetProcAddress(syscall.Handle(uintptr(handle)), name)
	if err != nil {
		return nil, err
	}

	return unsafe.Pointer(proc), nil
}

// Invoke a native ODBC entry point
func syscallN(fn unsafe.Pointer, args ...uintptr) uintptr {
	r, _, _ := syscall.SyscallN(uintptr(fn), args...)
	return r
}
