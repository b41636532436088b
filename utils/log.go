package utils

import (
	"log"
	"os"
	"path"
)

// NewLogger returns a logger for one pipeline step.  If the config
// has a TempDir, the log goes to <TempDir>/<name>.log, otherwise to
// stderr.
func NewLogger(config *Config, name string) *log.Logger {
	if config.TempDir == "" {
		return log.New(os.Stderr, "", log.Lshortfile)
	}

	logname := path.Join(config.TempDir, name+".log")
	fid, err := os.Create(logname)
	if err != nil {
		panic(err)
	}
	return log.New(fid, "", log.Lshortfile)
}
