//go:build linux

package ingest

import (
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/sirupsen/logrus"
)

// lockOSThreadForAffinity pins the calling goroutine to its current OS
// thread so a subsequent SchedSetaffinity call sticks; Go's scheduler would
// otherwise be free to migrate the goroutine to a different thread.
func lockOSThreadForAffinity() {
	runtime.LockOSThread()
}

// applyAffinity pins the calling goroutine's OS thread to core, mirroring
// the original receiver's pthread_setaffinity_np. core < 0 disables
// pinning. Best-effort: failures are logged, not fatal.
func applyAffinity(core int, log *logrus.Logger) {
	if core < 0 {
		return
	}
	lockOSThreadForAffinity()

	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		log.WithFields(logrus.Fields{"component": "ingest.receiver", "cpu_core": core, "err": err}).Warn("cpu affinity failed")
	}
}

// applyRealtimePriority sets SCHED_FIFO scheduling at the given priority,
// mirroring the original's pthread_setschedparam. priority <= 0 disables
// it. Best-effort: requires CAP_SYS_NICE, typically unavailable in
// containers, so failures are logged at debug level rather than a warning.
func applyRealtimePriority(priority int, log *logrus.Logger) {
	if priority <= 0 {
		return
	}
	sched := &unix.SchedParam{Priority: int32(priority)}
	if err := unix.SchedSetscheduler(0, unix.SCHED_FIFO, sched); err != nil {
		log.WithFields(logrus.Fields{"component": "ingest.receiver", "priority": priority, "err": err}).Debug("realtime priority unavailable")
	}
}
