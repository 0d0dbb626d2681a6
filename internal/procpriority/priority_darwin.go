//go:build darwin

package procpriority

import "golang.org/x/sys/unix"

// renicedTo matches swyh-rs's default renice target; negative values raise
// priority, per spec §7.
const renicedTo = -10

// raisePlatform renices the current process. Darwin enforces the same
// unprivileged-renice-below-zero restriction as Linux; on EPERM the process
// keeps its default priority.
func raisePlatform() error {
	return unix.Setpriority(unix.PRIO_PROCESS, pid(), renicedTo)
}
