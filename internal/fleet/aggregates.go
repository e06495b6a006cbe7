package fleet

import (
	"math"

	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
)

// Aggregates are fleet-wide figures derived from a snapshot.
type Aggregates struct {
	// ActiveWorkers counts workers whose status is OK.
	ActiveWorkers int
	// AverageCPU is the mean CPU usage, rounded to one decimal.
	AverageCPU float64
	// AverageMemory is the mean memory usage, rounded to one decimal.
	AverageMemory float64
	// Total is the number of workers in the snapshot.
	Total int
}

// ComputeAggregates derives the fleet figures. An empty fleet yields zeros.
func ComputeAggregates(workers []fleetapi.Worker) Aggregates {
	agg := Aggregates{Total: len(workers)}
	if len(workers) == 0 {
		return agg
	}

	var cpu, mem float64
	for _, w := range workers {
		if w.Status == fleetapi.StatusOK {
			agg.ActiveWorkers++
		}
		cpu += w.CPUUsage
		mem += w.MemoryUsage
	}

	n := float64(len(workers))
	agg.AverageCPU = round1(cpu / n)
	agg.AverageMemory = round1(mem / n)
	return agg
}

// round1 rounds half away from zero to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
