// Package reason defines the machine-readable reason codes returned in
// client-facing error bodies.
package reason

const (
	BadSyntax         = 15000
	UsernameInvalid   = 15001
	PasswordInvalid   = 15002
	UsernameNotUnique = 15003
	BadID             = 15004
	NoImageFound      = 15005
	TooManyFiles      = 15006
	MissingReportID   = 15007
	ReportNotFound    = 15008
)
