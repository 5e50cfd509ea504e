package audit

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/domain"
)

// LogFile is a viewable file inside a partition directory.
type LogFile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// descriptions of the logs written by the preprocessing pipeline and by
// this service.
var descriptions = map[string]string{
	EntryUpdatesFile:        "Records manual changes made to individual entries.",
	"outliers_log.txt":      "Contains information about outliers found in the data and their replacements.",
	"high_usage_log.txt":    "Records instances of exceptionally high usage detected in the data.",
	"entry_change_log.txt":  "Lists occurrences where text entries were replaced with previous valid numeric values.",
	"column_change_log.txt": "Documents cases where entire columns were converted from text to numeric format.",
	"usage_log.txt":         "Records usage calculations for the energy type.",
}

// ListFiles returns the .log and .txt files of a partition sorted by name.
// A missing partition directory yields an empty list.
func (l *Logger) ListFiles(p domain.Partition) ([]LogFile, error) {
	entries, err := os.ReadDir(filepath.Join(l.dir, string(p)))
	if errors.Is(err, fs.ErrNotExist) {
		return []LogFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s logs: %w", p, err)
	}

	out := []LogFile{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, ".log") || strings.HasSuffix(name, ".txt")) {
			continue
		}
		out = append(out, LogFile{Name: name, Description: describe(p, name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func describe(p domain.Partition, name string) string {
	if p == domain.Gas && name == "missing_dates_log.txt" {
		return "The dates which are missing."
	}
	if d, ok := descriptions[name]; ok {
		return d
	}
	return "Log file"
}

// ReadNewestFirst returns the lines of a partition log in reverse order.
func (l *Logger) ReadNewestFirst(p domain.Partition, name string) ([]string, error) {
	if name != filepath.Base(name) || !(strings.HasSuffix(name, ".log") || strings.HasSuffix(name, ".txt")) {
		return nil, fmt.Errorf("%w: %q", domain.ErrLogFileNotFound, name)
	}
	f, err := os.Open(filepath.Join(l.dir, string(p), name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrLogFileNotFound, p, name)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s/%s: %w", p, name, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", p, name, err)
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}
