package logging

import (
	log "github.com/sirupsen/logrus"
	"github.com/nebula-labs/nebula-reconstruct/internal/config"
)

// InitLogger sets the log level and format based on the resolved
// configuration (flags > NEBULA_ env vars > config.yaml > defaults). It is
// the sole entry point for configuring logrus in this tool; cobra's
// OnInitialize hook calls it once config.LoadConfig has resolved cfg.
func InitLogger(cfg *config.Config) {
	setLogLevel(cfg.LogLevel)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
}

// setLogLevel sets the log level based on string input
func setLogLevel(logLevel string) {
	switch logLevel {
	case "trace":
		log.SetLevel(log.TraceLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.ErrorLevel)
	}
}
