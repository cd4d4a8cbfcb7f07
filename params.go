package odbcscan

import (
	"strings"
)

// ConnectionParams identifies a remote data source. The locator is either
// a DSN name or a free-form connection string, discriminated by the
// presence of '='. Immutable once constructed.
type ConnectionParams struct {
	dsn        string
	connString string
	username   string
	password   string
	timeout    int
	readOnly   bool
}

// NewConnectionParams builds connection parameters from a locator. A
// locator containing '=' is treated as a connection string, anything
// else as a DSN name. Timeout is in seconds; zero means driver default.
func NewConnectionParams(locator, username, password string, timeout int, readOnly bool) ConnectionParams {
	p := ConnectionParams{
		username: username,
		password: password,
		timeout:  timeout,
		readOnly: readOnly,
	}
	if strings.Contains(locator, "=") {
		p.connString = locator
	} else {
		p.dsn = locator
	}
	return p
}

// ParamsFromConfig builds connection parameters taking timeout and
// read-only settings from a Config.
func ParamsFromConfig(locator, username, password string, cfg Config) ConnectionParams {
	return NewConnectionParams(locator, username, password, cfg.LoginTimeoutSeconds, cfg.ReadOnly)
}

// IsValid reports whether a locator was provided.
func (p ConnectionParams) IsValid() bool {
	return p.dsn != "" || p.connString != ""
}

// IsDSN reports whether the locator is a DSN name.
func (p ConnectionParams) IsDSN() bool {
	return p.dsn != ""
}

// DSN returns the DSN name, or "" for connection-string locators.
func (p ConnectionParams) DSN() string {
	return p.dsn
}

// ConnectionString returns the connection string, or "" for DSN locators.
func (p ConnectionParams) ConnectionString() string {
	return p.connString
}

// Username returns the username.
func (p ConnectionParams) Username() string {
	return p.username
}

// Timeout returns the login timeout in seconds.
func (p ConnectionParams) Timeout() int {
	return p.timeout
}

// ReadOnly reports whether read-only mode was requested.
func (p ConnectionParams) ReadOnly() bool {
	return p.readOnly
}

// Describe returns a display form of the locator safe for diagnostics
// and plan output. Connection strings carry credentials and are never
// echoed.
func (p ConnectionParams) Describe() string {
	if p.dsn != "" {
		return p.dsn
	}
	return "Connection String"
}
