package markdown

import "strings"

// tocParameters is the fixed configuration of the generated table of
// contents: a plain unordered disc list over heading levels 1-5 with no
// include/exclude filters and no outline numbering.
var tocParameters = []struct {
	name  string
	value string
}{
	{"printable", "true"},
	{"style", "disc"},
	{"maxLevel", "5"},
	{"minLevel", "1"},
	{"include", ""},
	{"exclude", ""},
	{"type", "list"},
	{"outline", "false"},
}

// tocMacro renders the storage-format TOC macro that Confluence expands
// server-side into a table of contents.
func tocMacro() string {
	var b strings.Builder
	b.WriteString(`<ac:structured-macro ac:name="toc">`)
	for _, p := range tocParameters {
		b.WriteString(`<ac:parameter ac:name="` + p.name + `">` + p.value + `</ac:parameter>`)
	}
	b.WriteString(`</ac:structured-macro>`)
	return b.String()
}
