//go:build windows

package procpriority

import "golang.org/x/sys/windows"

// aboveNormalPriorityClass mirrors swyh-rs's Windows priority bump, per
// spec §7.
const aboveNormalPriorityClass = 0x00008000

// raisePlatform sets the current process's priority class to "above
// normal". Unlike Linux/Darwin renicing, Windows does not require elevated
// privileges for this priority class, so failures here are unexpected but
// still handled the same non-fatal way as the other platforms.
func raisePlatform() error {
	return windows.SetPriorityClass(windows.CurrentProcess(), aboveNormalPriorityClass)
}
