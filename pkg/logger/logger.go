// Package logger configures the process-wide logrus logger and provides the
// application's named log categories.
package logger

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Init sets the global level and formatter. Unknown levels fall back to info.
func Init(level, format string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stdout)

	if strings.EqualFold(format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

// Gmail returns an entry for Gmail integration events.
func Gmail() *log.Entry {
	return log.WithField("component", "gmail")
}

// UserAction returns an entry for actions performed by a signed-in user.
func UserAction(userID string) *log.Entry {
	return log.WithFields(log.Fields{
		"component": "user",
		"user_id":   userID,
	})
}
