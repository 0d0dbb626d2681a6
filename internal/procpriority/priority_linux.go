//go:build linux

package procpriority

import "golang.org/x/sys/unix"

// renicedTo matches swyh-rs's default renice target; negative values raise
// priority (lower nice number runs sooner), per spec §7.
const renicedTo = -10

// raisePlatform renices the current process. Requires CAP_SYS_NICE or
// membership in a group permitted to renice below zero; on EPERM the
// process keeps its default nice value.
func raisePlatform() error {
	return unix.Setpriority(unix.PRIO_PROCESS, pid(), renicedTo)
}
