// Package procpriority raises the process scheduling priority so audio
// capture and encoding are less likely to be starved under load, per spec
// §7. Raising priority is best-effort: on platforms where the current user
// lacks permission (Linux requires CAP_SYS_NICE or group membership to
// renice below the default, per spec §7), the attempt is logged and the
// process continues at its default priority rather than failing startup.
package procpriority

import (
	"log/slog"

	"github.com/shirou/gopsutil/v3/process"
)

// Raise attempts to raise the current process's scheduling priority to
// "above normal" (Windows) or a negative nice value (Linux/Darwin). Errors
// are logged, never returned: priority is an optimization, not a
// correctness requirement.
func Raise(log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "procpriority")

	before, err := currentNice()
	if err != nil {
		log.Debug("could not read current process priority", "error", err)
	}

	if err := raisePlatform(); err != nil {
		log.Warn("failed to raise process priority, continuing at default priority", "error", err)
		return
	}

	after, err := currentNice()
	if err != nil {
		log.Debug("priority raised", "before", before)
		return
	}
	log.Info("raised process priority", "before", before, "after", after)
}

// currentNice reports the current process's OS scheduling priority via
// gopsutil, for before/after logging around a raise attempt.
func currentNice() (int32, error) {
	p, err := process.NewProcess(int32(pid()))
	if err != nil {
		return 0, err
	}
	return p.Nice()
}
