package diagnostics

import (
	"fmt"
	"strings"
	"time"

	"github.com/jaypipes/ghw"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Relaxation of large structures is memory hungry; below this the
// check turns into a warning.
const minRelaxMemoryMB = 2048

// checkMemory reads host memory and flags hosts too small for
// relaxation runs.
func (r *Runner) checkMemory() CheckResult {
	start := time.Now()
	res := CheckResult{Name: "system memory", Required: false}

	vm, err := mem.VirtualMemory()
	if err != nil {
		res.Status = StatusWarning
		res.Detail = fmt.Sprintf("could not read memory info: %v", err)
		res.Duration = time.Since(start)
		return res
	}

	availMB := float64(vm.Available) / 1024 / 1024
	totalMB := float64(vm.Total) / 1024 / 1024
	if availMB < minRelaxMemoryMB {
		res.Status = StatusWarning
		res.Detail = fmt.Sprintf("%.0f MB available of %.0f MB; relaxation of large structures may fail", availMB, totalMB)
	} else {
		res.Status = StatusOK
		res.Detail = fmt.Sprintf("%.0f MB available of %.0f MB", availMB, totalMB)
	}
	res.Duration = time.Since(start)
	return res
}

// checkGPU detects GPUs and reconciles the result with the relax
// use_gpu setting: asking for GPU relaxation on a host without one is
// the misconfiguration this check exists to catch.
func (r *Runner) checkGPU() CheckResult {
	start := time.Now()
	res := CheckResult{Name: "gpu", Required: false}

	names := detectGPUs()
	switch {
	case len(names) == 0 && r.cfg.Relax.UseGPU:
		res.Status = StatusWarning
		res.Detail = "relax.use_gpu is enabled but no GPU was detected"
	case len(names) == 0:
		res.Status = StatusOK
		res.Detail = "none detected (CPU relaxation configured)"
	default:
		res.Status = StatusOK
		res.Detail = strings.Join(names, ", ")
	}
	res.Duration = time.Since(start)
	return res
}

// detectGPUs lists GPU device names, best effort.
func detectGPUs() []string {
	info, err := ghw.GPU()
	if err != nil || info == nil {
		return nil
	}
	var names []string
	for _, card := range info.GraphicsCards {
		if card == nil {
			continue
		}
		name := "unknown gpu"
		if card.DeviceInfo != nil && card.DeviceInfo.Product != nil && card.DeviceInfo.Product.Name != "" {
			name = card.DeviceInfo.Product.Name
			if card.DeviceInfo.Vendor != nil && card.DeviceInfo.Vendor.Name != "" {
				name = card.DeviceInfo.Vendor.Name + " " + name
			}
		}
		names = append(names, name)
	}
	return names
}

// HostSummary is a one-line description of the host for log output.
func HostSummary() string {
	parts := []string{}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		parts = append(parts, strings.TrimSpace(infos[0].ModelName))
	}
	if cores, err := cpu.Counts(true); err == nil && cores > 0 {
		parts = append(parts, fmt.Sprintf("%d threads", cores))
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		parts = append(parts, fmt.Sprintf("%.1f GB RAM", float64(vm.Total)/1024/1024/1024))
	}
	if len(parts) == 0 {
		return "unknown host"
	}
	return strings.Join(parts, ", ")
}
