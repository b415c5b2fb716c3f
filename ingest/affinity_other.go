//go:build !linux

package ingest

import "github.com/sirupsen/logrus"

// applyAffinity is a no-op outside Linux; CPU pinning has no portable
// equivalent the standard library exposes.
func applyAffinity(core int, log *logrus.Logger) {
	if core >= 0 {
		log.WithFields(logrus.Fields{"component": "ingest.receiver", "cpu_core": core}).Debug("cpu affinity not supported on this platform")
	}
}

// applyRealtimePriority is a no-op outside Linux.
func applyRealtimePriority(priority int, log *logrus.Logger) {
	if priority > 0 {
		log.WithFields(logrus.Fields{"component": "ingest.receiver", "priority": priority}).Debug("realtime priority not supported on this platform")
	}
}
