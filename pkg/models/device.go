package models

import (
	"time"
)

// DeviceStatus tracks the trust lifecycle of an enrolled device.
type DeviceStatus string

const (
	DeviceStatusPending DeviceStatus = "pending"
	DeviceStatusActive  DeviceStatus = "active"
	DeviceStatusRevoked DeviceStatus = "revoked"
)

// Device is the identity and trust record for one managed endpoint.
type Device struct {
	ID                  string       `json:"id"`
	Hostname            string       `json:"hostname"`
	HardwareFingerprint *string      `json:"hardware_fingerprint,omitempty"`
	APIKey              *string      `json:"-"`
	Status              DeviceStatus `json:"status"`
	LastIP              string       `json:"last_ip,omitempty"`
	LastSeen            *time.Time   `json:"last_seen,omitempty"`
	OSName              string       `json:"os_name,omitempty"`
	OSVersion           string       `json:"os_version,omitempty"`
	CPUModel            string       `json:"cpu_model,omitempty"`
	CPUCores            int          `json:"cpu_cores,omitempty"`
	TotalRAMGB          float64      `json:"total_ram_gb,omitempty"`
	Disks               []DeviceDisk `json:"disks,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// DeviceDisk is a fixed-disk inventory entry reported at enrollment.
type DeviceDisk struct {
	Name        string  `json:"name"`
	MountPoint  string  `json:"mount_point"`
	TotalGB     float64 `json:"total_gb"`
	AvailableGB float64 `json:"available_gb"`
}
