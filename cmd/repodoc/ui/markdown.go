package ui

import (
	"github.com/charmbracelet/glamour"
)

const markdownWidth = 100

// RenderMarkdown renders md for the terminal.
func RenderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(markdownWidth),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// Markdown prints md rendered by glamour, or as-is when rendering fails.
func (t *Terminal) Markdown(md string) {
	if !t.tty {
		t.Println(md)
		return
	}
	out, err := RenderMarkdown(md)
	if err != nil {
		t.Println(md)
		return
	}
	t.Printf("%s", out)
}
