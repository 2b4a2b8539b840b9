// Package runtimeinfo discovers the host facts reported in the "server"
// section of a notice: hostname, install path and a memory snapshot.
// Lookup failures never abort notice construction; they are replaced by a
// descriptive placeholder and logged at warn level.
package runtimeinfo

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"

	"errnotice/internal/domain/entity"
)

const bytesPerMB = 1024 * 1024

// Inspector reports host facts. Hostname and project root are resolved once
// at construction; only the memory snapshot is taken per call.
type Inspector struct {
	hostname    string
	projectRoot string

	readMem     func(*runtime.MemStats)
	memoryLimit func() int64
}

// NewInspector resolves the host facts of the running process.
// A nil logger falls back to slog.Default().
func NewInspector(logger *slog.Logger) *Inspector {
	return newInspector(logger, os.Hostname, os.Executable)
}

func newInspector(logger *slog.Logger, hostname, executable func() (string, error)) *Inspector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inspector{
		hostname:    resolveHostname(logger, hostname),
		projectRoot: resolveProjectRoot(logger, executable),
		readMem:     runtime.ReadMemStats,
		memoryLimit: func() int64 { return debug.SetMemoryLimit(-1) },
	}
}

// Inspect returns the server context for environment.
func (i *Inspector) Inspect(environment string) entity.ServerContext {
	return entity.ServerContext{
		EnvironmentName: environment,
		Hostname:        i.hostname,
		ProjectRoot:     entity.ProjectRoot{Path: i.projectRoot},
		Stats:           entity.Stats{Mem: i.Memory()},
	}
}

// Hostname returns the machine hostname or a placeholder describing why it
// could not be resolved.
func (i *Inspector) Hostname() string {
	return i.hostname
}

// ProjectRoot returns the directory holding the running executable or a
// placeholder describing why it could not be resolved.
func (i *Inspector) ProjectRoot() string {
	return i.projectRoot
}

func resolveHostname(logger *slog.Logger, hostname func() (string, error)) string {
	name, err := hostname()
	if err != nil {
		logger.Warn("unable to resolve hostname", slog.Any("error", err))
		return "Unable to work out host name " + err.Error()
	}
	return name
}

func resolveProjectRoot(logger *slog.Logger, executable func() (string, error)) string {
	exe, err := executable()
	if err != nil {
		logger.Warn("unable to resolve project root", slog.Any("error", err))
		return "Unable to work out root directory " + err.Error()
	}
	if resolved, evalErr := filepath.EvalSymlinks(exe); evalErr == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// Memory returns the memory snapshot in megabytes.
//
// Total is the soft memory limit when one is set, otherwise the memory the
// runtime has obtained from the OS. Free is the headroom left under Total:
// with a limit that is limit - sys + idle heap, without one it is the idle
// heap the runtime still holds.
func (i *Inspector) Memory() entity.Mem {
	var ms runtime.MemStats
	i.readMem(&ms)

	sys := int64(ms.Sys)
	idle := int64(ms.HeapIdle - ms.HeapReleased)

	limit := i.memoryLimit()
	if limit <= 0 || limit == math.MaxInt64 {
		return entity.Mem{Total: toMB(sys), Free: toMB(idle)}
	}

	free := limit - sys + idle
	if free < 0 {
		free = 0
	}
	return entity.Mem{Total: toMB(limit), Free: toMB(free)}
}

func toMB(b int64) float64 {
	return float64(b) / bytesPerMB
}
