// internal/status/constants.go
package status

// ---- HEALTH CODES ----

// HealthUnknown represents a link that has not connected yet.
const HealthUnknown uint16 = 0

// HealthOK represents a connected link whose last transfer succeeded.
const HealthOK uint16 = 1

// HealthError represents a link that failed to connect or to transfer.
const HealthError uint16 = 2

// HealthDisabled represents a link that was shut down.
const HealthDisabled uint16 = 4

// ---- LIMITS ----

// MaxSecondsInError is where the seconds counter saturates. It MUST NOT wrap.
const MaxSecondsInError uint16 = 65535

// ---- ERROR CODES ----

// CodeGeneric is used for errors that expose no code of their own.
const CodeGeneric uint16 = 1
