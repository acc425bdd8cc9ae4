package ocr

import "strings"

// StripRepeatedLines removes lines that occur at least minRepeats
// times in the recovered markdown, keeping only the first occurrence.
// Multi-page invoices repeat headers and footers on every page; left
// in place they read as extra table rows downstream.
func StripRepeatedLines(markdown string, minRepeats int) string {
	if minRepeats < 2 {
		minRepeats = 2
	}
	lines := strings.Split(markdown, "\n")

	counts := make(map[string]int)
	for _, line := range lines {
		s := strings.TrimSpace(line)
		if s != "" {
			counts[s]++
		}
	}

	kept := make(map[string]bool)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		s := strings.TrimSpace(line)
		if s != "" && counts[s] >= minRepeats {
			if kept[s] {
				continue
			}
			kept[s] = true
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// TableRows returns the data rows of every markdown table in the
// text: header separators are skipped and the first row of each table
// is treated as the header and discarded.
func TableRows(markdown string) []string {
	var rows []string
	inTable := false
	seenHeader := false
	for _, line := range strings.Split(markdown, "\n") {
		s := strings.TrimSpace(line)
		if !strings.HasPrefix(s, "|") {
			if inTable && s != "" {
				inTable = false
				seenHeader = false
			}
			continue
		}
		if isSeparatorRow(s) {
			seenHeader = true
			continue
		}
		if !seenHeader && !inTable {
			// header row
			inTable = true
			continue
		}
		inTable = true
		rows = append(rows, s)
	}
	return rows
}

func isSeparatorRow(s string) bool {
	for _, r := range s {
		switch r {
		case '|', '-', ':', ' ':
		default:
			return false
		}
	}
	return true
}
