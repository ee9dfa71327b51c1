package models

import "time"

// VMRecord is one machine known to the orchestrator. The record is rebuilt
// wholesale on every inventory refresh; only LoadAverage is ever attached
// after construction.
type VMRecord struct {
	ProviderInstanceID string
	Name               string
	Directory          string
	DirectoryBaseName  string
	Provider           string
	IndexUUID          string
	LoadAverage        string
}

// RunningInstanceMap maps the comment string embedded in a hypervisor worker
// process's command line to the provider instance id it backs.
type RunningInstanceMap map[string]string

// ProcessEntry is one hypervisor worker process observed in a snapshot.
// Metric fields are nil when the OS would not report them; correlation
// fields are always set, possibly to "".
type ProcessEntry struct {
	PID           int32
	Username      string
	CommandLine   []string
	CPUPercent    *float64
	MemoryPercent *float32
	CPUTimesSum   *float64 // seconds
	Status        string

	VMID        string
	VMDirectory string
	VMName      string
	VMLoad      string
}

// StatusHistogram counts processes per status label across the whole
// process table, not just hypervisor workers.
type StatusHistogram map[string]int

// SystemStats carries the host-wide aggregates shown above the process list.
type SystemStats struct {
	CPUPercents  []float64
	MemTotal     uint64
	MemAvailable uint64
	MemPercent   float64
	SwapTotal    uint64
	SwapUsed     uint64
	SwapPercent  float64
	Load1        float64
	Load5        float64
	Load15       float64
	Uptime       time.Duration
}
