package prompt

import "strings"

// Template is one versioned prompt.
type Template struct {
	Command     string
	Version     string
	Description string
	Content     string
	// Source is "embedded" or the override directory it was read from.
	Source string
}

// Render replaces every {{key}} with vars[key]. Placeholders without a value
// are left untouched.
func (t *Template) Render(vars map[string]string) string {
	if len(vars) == 0 {
		return t.Content
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(t.Content)
}
