package odbcscan

// Version is the package version.
const Version = "0.1.0"

// DriverManagerPath returns the library path or soname of the loaded
// ODBC driver manager, or "" if none is loaded.
func DriverManagerPath() string {
	loadDriverManager()
	return driverLibPath
}
