package models

import (
	"time"
)

// Payload is an opaque bag of agent-supplied fields kept verbatim so that
// future agent versions can ship data the server does not yet understand.
type Payload map[string]interface{}

// DeviceMetric is one append-only telemetry sample. cpu/ram are canonical
// percentages in [0,100]; a nil pointer means the agent payload carried no
// parseable value, never that the value was zero.
type DeviceMetric struct {
	ID            int64              `json:"id,omitempty"`
	DeviceID      string             `json:"device_id"`
	RecordedAt    time.Time          `json:"recorded_at"`
	CPUPercent    *float64           `json:"cpu,omitempty"`
	RAMPercent    *float64           `json:"ram,omitempty"`
	CPUStates     map[string]float64 `json:"cpu_states,omitempty"`
	Load1         *float64           `json:"load_1,omitempty"`
	Load5         *float64           `json:"load_5,omitempty"`
	Load15        *float64           `json:"load_15,omitempty"`
	UptimeSeconds *float64           `json:"uptime_seconds,omitempty"`

	MemoryTotalMiB     *float64 `json:"memory_total_mib,omitempty"`
	MemoryUsedMiB      *float64 `json:"memory_used_mib,omitempty"`
	MemoryFreeMiB      *float64 `json:"memory_free_mib,omitempty"`
	MemoryCachedMiB    *float64 `json:"memory_cached_mib,omitempty"`
	MemoryBuffersMiB   *float64 `json:"memory_buffers_mib,omitempty"`
	MemoryAvailableMiB *float64 `json:"memory_available_mib,omitempty"`

	AlertsNormal   *int `json:"alerts_normal,omitempty"`
	AlertsWarning  *int `json:"alerts_warning,omitempty"`
	AlertsCritical *int `json:"alerts_critical,omitempty"`

	ProcessesTotal    *int `json:"processes_total,omitempty"`
	ProcessesRunning  *int `json:"processes_running,omitempty"`
	ProcessesSleeping *int `json:"processes_sleeping,omitempty"`
	ProcessesZombie   *int `json:"processes_zombie,omitempty"`

	AgentVersion string  `json:"agent_version,omitempty"`
	Payload      Payload `json:"payload,omitempty"`

	Disks   []DeviceDiskMetric    `json:"disks,omitempty"`
	Network []DeviceNetworkMetric `json:"network,omitempty"`
}

// DeviceDiskMetric is a per-mount-point usage sample owned by a DeviceMetric.
type DeviceDiskMetric struct {
	MountPoint  string   `json:"mount_point"`
	Name        string   `json:"name,omitempty"`
	TotalGB     *float64 `json:"total_gb,omitempty"`
	UsedGB      *float64 `json:"used_gb,omitempty"`
	AvailableGB *float64 `json:"available_gb,omitempty"`
	UsedPercent *float64 `json:"used_percent,omitempty"`
}

// DeviceNetworkMetric is a per-interface throughput sample owned by a DeviceMetric.
type DeviceNetworkMetric struct {
	Interface string   `json:"interface"`
	RxKbps    *float64 `json:"rx_kbps,omitempty"`
	TxKbps    *float64 `json:"tx_kbps,omitempty"`
}
