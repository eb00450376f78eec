package checkengine

import (
	"regexp"
	"strconv"
	"strings"
)

var hunkHeaderPattern = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// AddedLine is one line introduced by a diff hunk, with its post-image line
// number (the line number it occupies in the file after the change).
type AddedLine struct {
	Text string
	Line int
}

// ParseAddedLines walks a unified diff's hunks, tracking the post-image line
// counter from each "@@ +start,len @@" header. Context lines and additions
// advance the counter; deletions do not, matching spec §4.1's diff-walk
// contract exactly.
func ParseAddedLines(diff string) []AddedLine {
	var added []AddedLine
	currentLine := 0

	for _, line := range strings.Split(diff, "\n") {
		if m := hunkHeaderPattern.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				currentLine = n
			}
			continue
		}
		if currentLine == 0 {
			// Haven't seen a hunk header yet (file header lines like
			// "diff --git", "+++", "---", "index ...").
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			continue
		case strings.HasPrefix(line, "+"):
			added = append(added, AddedLine{Text: line[1:], Line: currentLine})
			currentLine++
		case strings.HasPrefix(line, "-"):
			// deletion: counter does not advance
		case strings.HasPrefix(line, "\\"):
			// "\ No newline at end of file" — not a real line
		default:
			// context line
			currentLine++
		}
	}

	return added
}

// RawDiffLines returns every line of a diff verbatim (no +/- filtering),
// for checks that need to inspect the raw patch text (e.g. conflict
// markers, which can appear on either side of a hunk).
func RawDiffLines(diff string) []string {
	return strings.Split(diff, "\n")
}
