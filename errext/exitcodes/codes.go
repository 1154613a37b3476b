// Package exitcodes contains the constants representing possible selenv exit error codes.
package exitcodes

// ExitCode is just a type representing a process exit code for selenv
type ExitCode uint8

// list of exit codes used by selenv
const (
	RunningAsRoot        ExitCode = 97
	PackageManagerFailed ExitCode = 98
	DownloadFailed       ExitCode = 99
	BrowserInstallFailed ExitCode = 100
	ScaffoldingFailed    ExitCode = 101
	PythonEnvFailed      ExitCode = 102
	InvalidConfig        ExitCode = 104
	ExternalAbort        ExitCode = 105
	GenericError         ExitCode = 103
)
