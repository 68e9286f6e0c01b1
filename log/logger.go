// Package log provides named leveled loggers backed by go-logging.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
)

type Level uint8

const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var levels = []struct {
	name  string
	level logging.Level
}{
	Debug:   {"debug", logging.DEBUG},
	Info:    {"info", logging.INFO},
	Notice:  {"notice", logging.NOTICE},
	Warning: {"warning", logging.WARNING},
	Error:   {"error", logging.ERROR},
}

var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

var leveledBackend logging.LeveledBackend

type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// Create a new logger tagged with the given module name.
func New(module string) Logger {
	return logging.MustGetLogger(module)
}

// Redirect log output to sink. Configured levels are preserved.
func SetSink(sink io.Writer) {
	prev := leveledBackend

	backend := logging.NewBackendFormatter(logging.NewLogBackend(sink, "", 0), format)
	leveledBackend = logging.AddModuleLevel(backend)
	if prev != nil {
		leveledBackend.SetLevel(prev.GetLevel(""), "")
	} else {
		leveledBackend.SetLevel(logging.NOTICE, "")
	}
	logging.SetBackend(leveledBackend)
}

// Set the default verbosity for all modules.
func SetLevel(level Level) {
	SetModuleLevel("", level)
}

// Set the verbosity for a single module.
func SetModuleLevel(module string, level Level) {
	if int(level) >= len(levels) {
		level = Error
	}
	leveledBackend.SetLevel(levels[level].level, module)
}

// Parse a level name (debug, info, notice, warning, error).
func ParseLevel(name string) (Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for level, entry := range levels {
		if entry.name == name {
			return Level(level), nil
		}
	}
	return Notice, fmt.Errorf("log: unknown level %q", name)
}

// Apply a comma separated level configuration. Each entry is either a level
// name, setting the default level, or a module=level pair; for example
// "notice,bvh builder=debug".
func Configure(config string) error {
	for _, entry := range strings.Split(config, ",") {
		if strings.TrimSpace(entry) == "" {
			continue
		}

		module, levelName := "", entry
		if sep := strings.IndexByte(entry, '='); sep != -1 {
			module, levelName = strings.TrimSpace(entry[:sep]), entry[sep+1:]
		}

		level, err := ParseLevel(levelName)
		if err != nil {
			return err
		}
		SetModuleLevel(module, level)
	}
	return nil
}

func init() {
	SetSink(os.Stdout)
}
