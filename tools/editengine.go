package tools

import (
	"fmt"
	"sort"
	"strings"
)

// Edit is one {old_text, new_text} pair to apply against a file's content.
type Edit struct {
	OldText string
	NewText string
}

// resolvedRange is a located, validated byte range for one Edit.
type resolvedRange struct {
	editIndex int
	start     int
	end       int
	oldText   string
	newText   string
}

// ApplyEdits locates exactly one range per Edit in content, rejects
// overlapping ranges, and applies them in reverse order so earlier offsets
// stay valid. It returns the updated content and a unified-diff-style block
// per edit, in original edit order.
func ApplyEdits(content string, edits []Edit) (string, string, error) {
	ranges := make([]resolvedRange, 0, len(edits))
	for i, edit := range edits {
		start, end, err := locateEdit(content, edit.OldText)
		if err != nil {
			return "", "", fmt.Errorf("tool: edit %d: %w", i, err)
		}
		ranges = append(ranges, resolvedRange{editIndex: i, start: start, end: end, oldText: edit.OldText, newText: edit.NewText})
	}

	sorted := make([]resolvedRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].start < sorted[i-1].end {
			return "", "", fmt.Errorf("tool: edits %d and %d overlap", sorted[i-1].editIndex, sorted[i].editIndex)
		}
	}

	updated := content
	for i := len(sorted) - 1; i >= 0; i-- {
		r := sorted[i]
		updated = updated[:r.start] + r.newText + updated[r.end:]
	}

	var diff strings.Builder
	for _, edit := range edits {
		diff.WriteString(diffBlock(edit.OldText, edit.NewText))
	}
	return updated, diff.String(), nil
}

// locateEdit finds the unique byte range in content matching oldText, first
// by exact substring count, then by whitespace-normalised line-window
// matching.
func locateEdit(content, oldText string) (int, int, error) {
	normalizedOld := normalizeWhitespace(oldText)
	if normalizedOld == "" {
		return 0, 0, fmt.Errorf("old_text is empty")
	}

	if count := strings.Count(content, oldText); count == 1 {
		start := strings.Index(content, oldText)
		return start, start + len(oldText), nil
	} else if count > 1 {
		return 0, 0, fmt.Errorf("matches %d locations; provide more specific old_text", count)
	}

	return locateByLineWindow(content, oldText)
}

// locateByLineWindow scans every line window the same length (in lines) as
// oldText and compares whitespace-normalised forms.
func locateByLineWindow(content, oldText string) (int, int, error) {
	normalizedOld := normalizeWhitespace(oldText)
	oldLineCount := len(splitLinesKeepEnds(oldText))

	lines := splitLinesKeepEnds(content)
	offsets := make([]int, len(lines)+1)
	offset := 0
	for i, line := range lines {
		offsets[i] = offset
		offset += len(line)
	}
	offsets[len(lines)] = offset

	type windowMatch struct{ start, end int }
	var matches []windowMatch

	for start := 0; start+oldLineCount <= len(lines); start++ {
		window := strings.Join(lines[start:start+oldLineCount], "")
		if normalizeWhitespace(window) == normalizedOld {
			matches = append(matches, windowMatch{start: offsets[start], end: offsets[start+oldLineCount]})
		}
	}

	switch len(matches) {
	case 0:
		return 0, 0, fmt.Errorf("old_text not found")
	case 1:
		return matches[0].start, matches[0].end, nil
	default:
		return 0, 0, fmt.Errorf("matched multiple locations; provide more context")
	}
}

// splitLinesKeepEnds splits s into lines, each retaining its trailing "\n"
// (the final line keeps none if s doesn't end in one).
func splitLinesKeepEnds(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// normalizeWhitespace collapses every maximal run of whitespace into a
// single space and trims the ends.
func normalizeWhitespace(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !inSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// diffBlock renders a minimal unified-style block for one edit.
func diffBlock(oldText, newText string) string {
	var b strings.Builder
	for _, line := range strings.Split(oldText, "\n") {
		b.WriteString("-" + line + "\n")
	}
	for _, line := range strings.Split(newText, "\n") {
		b.WriteString("+" + line + "\n")
	}
	return b.String()
}

// WholeFileDiff renders a unified-style block for a full-file create or
// overwrite, where the entire previous content is replaced.
func WholeFileDiff(oldContent, newContent string) string {
	return diffBlock(oldContent, newContent)
}
