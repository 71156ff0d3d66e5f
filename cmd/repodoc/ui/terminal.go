package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/mattn/go-isatty"

	"repodoctor/internal/doctor"
	"repodoctor/internal/schemas"
)

// Terminal writes styled output to one writer.
type Terminal struct {
	w       io.Writer
	r       *lipgloss.Renderer
	styles  Styles
	verbose bool
	tty     bool
}

// New returns a Terminal writing to w. Styling follows what w supports, so a
// bytes.Buffer or file receives plain text.
func New(w io.Writer, verbose bool) *Terminal {
	r := lipgloss.NewRenderer(w)
	return &Terminal{
		w:       w,
		r:       r,
		styles:  NewStyles(r),
		verbose: verbose,
		tty:     IsTerminal(w),
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Writer returns the underlying writer.
func (t *Terminal) Writer() io.Writer { return t.w }

// Styles returns the styles bound to this terminal.
func (t *Terminal) Styles() Styles { return t.styles }

// Verbose reports whether verbose output was requested.
func (t *Terminal) Verbose() bool { return t.verbose }

// Println writes a line.
func (t *Terminal) Println(a ...any) {
	fmt.Fprintln(t.w, a...)
}

// Printf writes formatted text.
func (t *Terminal) Printf(format string, a ...any) {
	fmt.Fprintf(t.w, format, a...)
}

// Header prints a bold heading preceded by a blank line.
func (t *Terminal) Header(text, emoji string) {
	t.Printf("\n%s\n\n", t.styles.Bold.Render(emoji+"  "+text))
}

// Section prints a bold colored label.
func (t *Terminal) Section(style lipgloss.Style, text string) {
	t.Printf("\n%s\n", style.Bold(true).Render(text))
}

// Bullet prints an indented list item.
func (t *Terminal) Bullet(text string) {
	t.Printf("  • %s\n", text)
}

func (t *Terminal) PrintSuccess(msg string) {
	t.Printf("%s %s\n", t.styles.Success.Render("✓"), msg)
}

func (t *Terminal) PrintWarning(msg string) {
	t.Printf("%s %s\n", t.styles.Warning.Render("⚠"), msg)
}

func (t *Terminal) PrintInfo(msg string) {
	t.Printf("%s %s\n", t.styles.Info.Render("ℹ"), msg)
}

func (t *Terminal) PrintError(msg string) {
	t.Printf("%s %s\n", t.styles.Error.Render("✗"), msg)
}

// Dim prints a faint line.
func (t *Terminal) Dim(msg string) {
	t.Println(t.styles.Muted.Render(msg))
}

// HealthScore prints the score in a rounded panel colored by band.
func (t *Terminal) HealthScore(h schemas.RepoHealthScore, label string) {
	color, mark := Destructive, "✗"
	switch {
	case h.OverallScore >= 80:
		color, mark = Success, "✓"
	case h.OverallScore >= 60:
		color, mark = Warning, "⚠"
	}
	grade := h.Grade
	if grade == "" {
		grade = schemas.Grade(h.OverallScore)
	}
	text := fmt.Sprintf("%s %s: %d/100 (Grade: %s)", mark, label, h.OverallScore, grade)
	body := t.r.NewStyle().Bold(true).Foreground(color).Render(text)
	t.Println(t.styles.Panel.BorderForeground(color).Render(body))
}

// IssueRow is one line of an issues table.
type IssueRow struct {
	Severity    string
	Category    string
	Description string
	Location    string
}

// IssueRows converts schema issues to table rows.
func IssueRows(issues []schemas.Issue) []IssueRow {
	rows := make([]IssueRow, len(issues))
	for i, is := range issues {
		rows[i] = IssueRow{
			Severity:    string(is.Severity),
			Category:    is.Category,
			Description: is.Description,
			Location:    schemas.Deref(is.FilePath, ""),
		}
	}
	return rows
}

// IssuesTable prints issues with a severity column. An empty list prints a
// single "No <title> found" line.
func (t *Terminal) IssuesTable(rows []IssueRow, title string) {
	if len(rows) == 0 {
		t.PrintSuccess("No " + strings.ToLower(title) + " found")
		return
	}

	data := make([][]string, len(rows))
	for i, r := range rows {
		loc := r.Location
		if loc == "" {
			loc = "N/A"
		}
		data[i] = []string{strings.ToUpper(r.Severity), r.Category, r.Description, loc}
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(t.styles.Muted).
		Headers("Severity", "Category", "Description", "Location").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return t.styles.TableHeader
			}
			switch col {
			case 0:
				return t.styles.Severity(rows[row].Severity).Padding(0, 1)
			case 1:
				return t.styles.Accent.Padding(0, 1)
			case 2:
				return t.styles.Cell.Width(60)
			default:
				return t.styles.Muted.Padding(0, 1)
			}
		})

	t.Println(t.styles.Bold.Render(title))
	t.Println(tbl.String())
}

// Recommendations prints a numbered list colored by priority.
func (t *Terminal) Recommendations(recs []schemas.Recommendation) {
	if len(recs) == 0 {
		return
	}
	t.Section(t.styles.Accent, "Recommendations:")
	for i, rec := range recs {
		dot := t.styles.Severity(string(rec.Priority)).Render("●")
		t.Printf("  %d. %s %s\n", i+1, dot, t.styles.Warning.Render(rec.Action))
		t.Printf("     %s\n\n", rec.Reason)
	}
}

// KV is one key/value line of a summary.
type KV struct {
	Key   string
	Value string
}

// SummaryTable prints aligned key/value pairs under a title. Keys written
// with underscores are title-cased.
func (t *Terminal) SummaryTable(pairs []KV, title string) {
	width := 0
	for _, p := range pairs {
		if w := lipgloss.Width(formatKey(p.Key)); w > width {
			width = w
		}
	}
	if title != "" {
		t.Println(t.styles.Bold.Render(title))
	}
	key := t.styles.Key.Width(width + 2)
	for _, p := range pairs {
		t.Printf("%s%s\n", key.Render(formatKey(p.Key)), p.Value)
	}
}

func formatKey(k string) string {
	if !strings.Contains(k, "_") {
		return k
	}
	words := strings.Split(k, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// TreeNode is a directory with a description and child entries.
type TreeNode struct {
	Path     string
	Purpose  string
	Children []string
}

// DirectoryTree prints nodes as a tree under title.
func (t *Terminal) DirectoryTree(nodes []TreeNode, title string) {
	root := tree.Root(t.styles.Bold.Render(title)).
		EnumeratorStyle(t.styles.Muted)
	for _, n := range nodes {
		label := t.styles.Accent.Render(n.Path)
		if n.Purpose != "" {
			label += " - " + n.Purpose
		}
		if len(n.Children) == 0 {
			root.Child(label)
			continue
		}
		branch := tree.Root(label).EnumeratorStyle(t.styles.Muted)
		for _, c := range n.Children {
			branch.Child(t.styles.Muted.Render(c))
		}
		root.Child(branch)
	}
	t.Println(root.String())
}

// Error prints err with a red title derived from its kind. Unexpected errors
// suggest --verbose unless it is already on.
func (t *Terminal) Error(err error) {
	title := doctor.Title(err)
	t.Println(t.styles.Error.Bold(true).Render("✗ " + title))
	t.Println(err.Error())
	if doctor.KindOf(err) == doctor.KindUnknown && !t.verbose {
		t.Dim("Run with --verbose for more details")
	}
}

// SuccessMessage prints the closing success line and next steps.
func (t *Terminal) SuccessMessage(command string, nextActions []string) {
	t.Printf("\n%s\n", t.styles.Success.Bold(true).Render("✓ "+command+" completed successfully!"))
	if len(nextActions) == 0 {
		return
	}
	t.Printf("\n%s\n", t.styles.Accent.Render("💡 Next steps:"))
	for _, a := range nextActions {
		t.Bullet(a)
	}
}

// SortedKeys returns the keys of m in order, for stable output.
func SortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Diff prints a unified diff with added lines green and removed lines red.
func (t *Terminal) Diff(unified string) {
	for _, line := range strings.Split(strings.TrimRight(unified, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			t.Println(t.styles.Bold.Render(line))
		case strings.HasPrefix(line, "@@"):
			t.Println(t.styles.Accent.Render(line))
		case strings.HasPrefix(line, "+"):
			t.Println(t.styles.Success.Render(line))
		case strings.HasPrefix(line, "-"):
			t.Println(t.styles.Error.Render(line))
		default:
			t.Println(line)
		}
	}
}
