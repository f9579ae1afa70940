// Package stats extracts the summary counters rsync prints with --stats.
package stats

import "strings"

// Labels are matched in order; values stay opaque strings so rsync's own
// formatting (thousands separators, units) survives into the status page.
var labels = []struct {
	prefix string
	key    string
}{
	{"Number of created files:", "created_files"},
	{"Number of deleted files:", "deleted_files"},
	{"Number of files:", "total_files"},
	{"Total transferred file size:", "transferred_size"},
	{"Total file size:", "total_size"},
}

// Parse scans output for recognized stat lines. Unrecognized lines are
// ignored and absent labels are simply missing keys.
func Parse(output string) map[string]string {
	parsed := make(map[string]string)

	for _, line := range strings.Split(output, "\n") {
		for _, label := range labels {
			if !strings.Contains(line, label.prefix) {
				continue
			}

			if _, value, ok := strings.Cut(line, ":"); ok {
				parsed[label.key] = strings.TrimSpace(value)
			}
			break
		}
	}

	return parsed
}
