package models

import (
	"time"
)

// CommandStatus is the state machine position of a queued command.
type CommandStatus string

const (
	CommandStatusPending   CommandStatus = "pending"
	CommandStatusSent      CommandStatus = "sent"
	CommandStatusRunning   CommandStatus = "running"
	CommandStatusCompleted CommandStatus = "completed"
	CommandStatusFailed    CommandStatus = "failed"
	CommandStatusTimedOut  CommandStatus = "timed_out"
	CommandStatusCancelled CommandStatus = "cancelled"
)

// IsTerminal reports whether no further transition is permitted from s.
func (s CommandStatus) IsTerminal() bool {
	switch s {
	case CommandStatusCompleted, CommandStatusFailed, CommandStatusTimedOut, CommandStatusCancelled:
		return true
	default:
		return false
	}
}

// ScriptType is the shell dialect a command's script_content targets.
type ScriptType string

const (
	ScriptTypePowershell ScriptType = "powershell"
	ScriptTypeCmd        ScriptType = "cmd"
	ScriptTypeBash       ScriptType = "bash"
	ScriptTypeSh         ScriptType = "sh"
)

// ValidScriptType reports whether t is an accepted shell dialect.
func ValidScriptType(t ScriptType) bool {
	switch t {
	case ScriptTypePowershell, ScriptTypeCmd, ScriptTypeBash, ScriptTypeSh:
		return true
	default:
		return false
	}
}

// CommandResult is the terminal outcome applied to a dispatched command.
type CommandResult struct {
	Status       CommandStatus
	ExitCode     int
	Output       *string
	ErrorMessage *string
	CompletedAt  time.Time
}

// DeviceCommand is one unit of remote work queued for a device. The device_id
// never changes after creation; output, exit_code, and error_message are only
// populated when the command reaches a terminal state.
type DeviceCommand struct {
	ID             string        `json:"id"`
	DeviceID       string        `json:"device_id"`
	TemplateID     *string       `json:"template_id,omitempty"`
	ScriptContent  string        `json:"script_content"`
	ScriptType     ScriptType    `json:"script_type"`
	Status         CommandStatus `json:"status"`
	QueuedAt       time.Time     `json:"queued_at"`
	SentAt         *time.Time    `json:"sent_at,omitempty"`
	StartedAt      *time.Time    `json:"started_at,omitempty"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
	TimeoutSeconds int           `json:"timeout_seconds"`
	Output         *string       `json:"output,omitempty"`
	ExitCode       *int          `json:"exit_code,omitempty"`
	ErrorMessage   *string       `json:"error_message,omitempty"`
	QueuedBy       string        `json:"queued_by,omitempty"`
}
