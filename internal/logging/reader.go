package logging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry is one parsed line of pulse.log.
type Entry struct {
	Time      time.Time
	Level     string
	Message   string
	Component string
	AttemptID uint64
	Attrs     map[string]any // every other attribute
}

// Filter selects log entries. Zero fields match everything.
type Filter struct {
	Level     string    // minimum level
	Since     time.Time // entries at or after
	Component string
	Contains  string // substring of the message
}

var levelOrder = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Match reports whether e passes every set criterion.
func (f Filter) Match(e Entry) bool {
	if f.Level != "" && levelOrder[strings.ToUpper(e.Level)] < levelOrder[ParseLevel(f.Level)] {
		return false
	}
	if !f.Since.IsZero() && e.Time.Before(f.Since) {
		return false
	}
	if f.Component != "" && e.Component != f.Component {
		return false
	}
	if f.Contains != "" && !strings.Contains(e.Message, f.Contains) {
		return false
	}
	return true
}

// ReadEntries parses JSON log lines from r. Lines that are not JSON objects
// are skipped so a partially written record does not hide the rest.
func ReadEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry, err := parseEntry(line)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log: %w", err)
	}
	return entries, nil
}

// ReadLog reads {dir}/pulse.log together with its rotated backups and
// returns the entries in time order.
func ReadLog(dir string) ([]Entry, error) {
	path := filepath.Join(dir, LogFileName)
	backups, _ := filepath.Glob(path + ".*")
	files := append(backups, path)

	var all []Entry
	found := false
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		found = true
		entries, err := ReadEntries(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		all = append(all, entries...)
	}
	if !found {
		return nil, fmt.Errorf("no log file in %s: %w", dir, os.ErrNotExist)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Time.Before(all[j].Time)
	})
	return all, nil
}

func parseEntry(line string) (Entry, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, fmt.Errorf("invalid JSON: %w", err)
	}

	e := Entry{Attrs: make(map[string]any)}
	for key, value := range raw {
		switch key {
		case slog.TimeKey:
			if s, ok := value.(string); ok {
				e.Time, _ = time.Parse(time.RFC3339Nano, s)
			}
		case slog.LevelKey:
			e.Level, _ = value.(string)
		case slog.MessageKey:
			e.Message, _ = value.(string)
		case "component":
			e.Component, _ = value.(string)
		case "attempt_id":
			if n, ok := value.(float64); ok && n >= 0 {
				e.AttemptID = uint64(n)
			}
		default:
			e.Attrs[key] = value
		}
	}
	return e, nil
}
