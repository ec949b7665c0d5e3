package models

import (
	"encoding/json"
	"time"
)

// EnrollRequest is the body of POST /api/enroll. Older agents send a combined
// "os" string and total_ram_bytes; newer agents send the split fields. Both
// are accepted.
type EnrollRequest struct {
	Hostname            string       `json:"hostname"`
	OS                  string       `json:"os,omitempty"`
	OSName              string       `json:"os_name,omitempty"`
	OSVersion           string       `json:"os_version,omitempty"`
	CPUModel            string       `json:"cpu_model,omitempty"`
	CPUCores            int          `json:"cpu_cores,omitempty"`
	TotalRAMGB          float64      `json:"total_ram_gb,omitempty"`
	TotalRAMBytes       uint64       `json:"total_ram_bytes,omitempty"`
	Disks               []DeviceDisk `json:"disks,omitempty"`
	HardwareFingerprint string       `json:"hardware_fingerprint,omitempty"`
}

// EnrollResponse is shared by /api/enroll and /api/check. The api_key is only
// present when the device is active.
type EnrollResponse struct {
	Status       string       `json:"status"`
	DeviceStatus DeviceStatus `json:"device_status"`
	APIKey       *string      `json:"api_key,omitempty"`
}

// CheckRequest is the body of POST /api/check.
type CheckRequest struct {
	Hostname            string `json:"hostname"`
	HardwareFingerprint string `json:"hardware_fingerprint,omitempty"`
}

// HeartbeatResponse is the body returned by POST /api/heartbeat.
type HeartbeatResponse struct {
	Status     string    `json:"status"`
	ServerTime time.Time `json:"server_time"`
}

// MetricsSubmission captures the structured telemetry body. Every field is
// raw JSON because four incompatible agent encodings are in the wild; the
// telemetry normalizer decides what each blob actually is.
type MetricsSubmission struct {
	Timestamp    string          `json:"timestamp,omitempty"`
	AgentVersion string          `json:"agent_version,omitempty"`
	CPU          json.RawMessage `json:"cpu,omitempty"`
	RAM          json.RawMessage `json:"ram,omitempty"`
	Memory       json.RawMessage `json:"memory,omitempty"`
	Load         json.RawMessage `json:"load,omitempty"`
	Uptime       json.RawMessage `json:"uptime,omitempty"`
	Alerts       json.RawMessage `json:"alerts,omitempty"`
	Processes    json.RawMessage `json:"processes,omitempty"`
	Disks        json.RawMessage `json:"disks,omitempty"`
	Network      json.RawMessage `json:"network,omitempty"`
	SystemInfo   json.RawMessage `json:"system_info,omitempty"`
}

// CommandDispatch is the wire shape of a command handed to a polling agent.
type CommandDispatch struct {
	ID             string     `json:"id"`
	ScriptContent  string     `json:"script_content"`
	ScriptType     ScriptType `json:"script_type"`
	TimeoutSeconds int        `json:"timeout_seconds"`
}

// PendingCommandResponse is the body of GET /api/commands/pending. Command is
// null when nothing is queued.
type PendingCommandResponse struct {
	Command *CommandDispatch `json:"command"`
}

// CommandResultRequest is the body of POST /api/commands/{id}/result.
type CommandResultRequest struct {
	ExitCode     *int   `json:"exit_code"`
	Output       string `json:"output,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// QueueCommandRequest is the admin body for queuing a command.
type QueueCommandRequest struct {
	DeviceID       string     `json:"device_id"`
	TemplateID     *string    `json:"template_id,omitempty"`
	ScriptContent  string     `json:"script_content"`
	ScriptType     ScriptType `json:"script_type"`
	TimeoutSeconds int        `json:"timeout_seconds,omitempty"`
	QueuedBy       string     `json:"queued_by,omitempty"`
}

// ErrorResponse is the generic error envelope.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}
