// Package diff compares a file with its patched replacement using line-mode
// diffmatchpatch and formats the result as a unified diff.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of change a line represents.
type Op int

const (
	Equal Op = iota
	Add
	Remove
)

func (o Op) prefix() string {
	switch o {
	case Add:
		return "+"
	case Remove:
		return "-"
	default:
		return " "
	}
}

// Line is one line of the comparison, without its newline.
type Line struct {
	Op   Op
	Text string
}

// Patch is the line-level difference between two versions of a file.
type Patch struct {
	OldName string
	NewName string
	Lines   []Line
	Added   int
	Removed int
}

// Compare diffs oldText against newText line by line.
func Compare(oldName, newName, oldText, newText string) *Patch {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	p := &Patch{OldName: oldName, NewName: newName}
	for _, d := range diffs {
		op := Equal
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = Add
		case diffmatchpatch.DiffDelete:
			op = Remove
		}
		for _, text := range splitLines(d.Text) {
			p.Lines = append(p.Lines, Line{Op: op, Text: text})
			switch op {
			case Add:
				p.Added++
			case Remove:
				p.Removed++
			}
		}
	}
	return p
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// Changed reports whether the two versions differ.
func (p *Patch) Changed() bool {
	return p.Added > 0 || p.Removed > 0
}

// Unified formats the patch with context lines around each change. It
// returns "" when nothing changed.
func (p *Patch) Unified(context int) string {
	if !p.Changed() {
		return ""
	}

	n := len(p.Lines)
	oldPos := make([]int, n+1)
	newPos := make([]int, n+1)
	for i, l := range p.Lines {
		oldPos[i+1], newPos[i+1] = oldPos[i], newPos[i]
		if l.Op != Add {
			oldPos[i+1]++
		}
		if l.Op != Remove {
			newPos[i+1]++
		}
	}

	var hunks [][2]int
	for i, l := range p.Lines {
		if l.Op == Equal {
			continue
		}
		start, end := max(0, i-context), min(n, i+context+1)
		if k := len(hunks) - 1; k >= 0 && start <= hunks[k][1] {
			hunks[k][1] = end
			continue
		}
		hunks = append(hunks, [2]int{start, end})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", p.OldName, p.NewName)
	for _, h := range hunks {
		start, end := h[0], h[1]
		oldCount := oldPos[end] - oldPos[start]
		newCount := newPos[end] - newPos[start]
		fmt.Fprintf(&sb, "@@ -%s +%s @@\n", hunkRange(oldPos[start], oldCount), hunkRange(newPos[start], newCount))
		for _, l := range p.Lines[start:end] {
			sb.WriteString(l.Op.prefix())
			sb.WriteString(l.Text)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// hunkRange renders "start,count" where start is 1-based, or the line before
// the hunk when it is empty on that side.
func hunkRange(before, count int) string {
	if count == 0 {
		return fmt.Sprintf("%d,0", before)
	}
	return fmt.Sprintf("%d,%d", before+1, count)
}
