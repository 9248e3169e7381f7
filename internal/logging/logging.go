// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package logging carries kilu's log records to the terminal and, when
// configured, to a diagnostic log file.
package logging

import (
	"strconv"
	"strings"
	"time"
)

// Level is a record severity. Levels are ordered; SUCCESS sits between INFO
// and WARNING.
type Level int

const (
	LevelNotSet   Level = 0
	LevelDebug    Level = 10
	LevelInfo     Level = 20
	LevelSuccess  Level = 25
	LevelWarning  Level = 30
	LevelError    Level = 40
	LevelCritical Level = 50
)

var levelNames = map[Level]string{
	LevelNotSet:   "NOTSET",
	LevelDebug:    "DEBUG",
	LevelInfo:     "INFO",
	LevelSuccess:  "SUCCESS",
	LevelWarning:  "WARNING",
	LevelError:    "ERROR",
	LevelCritical: "CRITICAL",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "LEVEL(" + strconv.Itoa(int(l)) + ")"
}

// ParseLevel maps a level name (any case) to its Level. Unknown names
// return LevelInfo and false.
func ParseLevel(name string) (Level, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "WARN" {
		upper = "WARNING"
	}
	for level, n := range levelNames {
		if n == upper {
			return level, true
		}
	}
	return LevelInfo, false
}

// Record is one log event.
type Record struct {
	Level   Level
	Message string
	Time    time.Time
}
