package ui

import (
	"sort"

	"github.com/scoates/vagranttop/internal/models"
)

type sortColumn int

const (
	sortByCPU sortColumn = iota
	sortByMem
	sortByTime
	sortByPID
	sortByVMDir
	sortByVMName
	sortByVMID
)

// sortEntries orders entries in place by the selected column. Ties land in
// whatever order the sort leaves them; nil metrics sort below every number.
func sortEntries(entries []models.ProcessEntry, col sortColumn, descending bool) {
	sort.Slice(entries, func(i, j int) bool {
		if descending {
			return entryLess(entries[j], entries[i], col)
		}
		return entryLess(entries[i], entries[j], col)
	})
}

func entryLess(a, b models.ProcessEntry, col sortColumn) bool {
	switch col {
	case sortByCPU:
		return floatKey(a.CPUPercent) < floatKey(b.CPUPercent)
	case sortByMem:
		return float32Key(a.MemoryPercent) < float32Key(b.MemoryPercent)
	case sortByTime:
		return floatKey(a.CPUTimesSum) < floatKey(b.CPUTimesSum)
	case sortByPID:
		return a.PID < b.PID
	case sortByVMDir:
		return a.VMDirectory < b.VMDirectory
	case sortByVMName:
		return a.VMName < b.VMName
	case sortByVMID:
		return a.VMID < b.VMID
	}
	return false
}

func floatKey(v *float64) float64 {
	if v == nil {
		return -1
	}
	return *v
}

func float32Key(v *float32) float32 {
	if v == nil {
		return -1
	}
	return *v
}
