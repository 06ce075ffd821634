package config

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// SetupLogger 设置 logrus 级别和输出格式, 级别无法识别时使用 debug
func SetupLogger(c LogConfig) {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(level)
	}
	log.SetOutput(os.Stdout)

	if strings.EqualFold(c.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
