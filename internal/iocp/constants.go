// internal/iocp/constants.go
package iocp

// Wire constants. These define the protocol shared with the device firmware
// and the upstream server and MUST NOT be configurable.

// ---- FRAMING ----

// Header prefixes every IOCP line.
const Header = "Arn"

// CommandSeparator sits between the header and the command keyword.
const CommandSeparator = "."

// ContentSeparator terminates the command keyword and every content field.
const ContentSeparator = ":"

// ValueSeparator joins a position name and its value inside an update field.
const ValueSeparator = "="

// LineTerminator ends every line on the wire.
const LineTerminator = "\r\n"

// ---- COMMANDS ----

const (
	CommandRegistration = "Inicio"
	CommandUpdate       = "Resp"
	CommandKeepAlive    = "Vivo"
	CommandExit         = "Fin"
)
