package emit

import "strings"

// Expand substitutes every `${{Name}}` token in tmpl with values[Name],
// the macro contract named by the code-emission interface: StateMapEnumerated,
// TypeDeclarations, and ParsingDefinitions are the sections a backend
// fills in, but Expand itself knows nothing about those specific names —
// any caller-supplied value map works. In a multi-line replacement, every
// line after the first is prefixed with the run of tabs that opens the
// macro token's line, so a section rendered with its own internal
// indentation still lines up inside whatever template surrounds it.
func Expand(tmpl string, values map[string]string) string {
	var out strings.Builder
	i := 0
	for i < len(tmpl) {
		start := strings.Index(tmpl[i:], "${{")
		if start < 0 {
			out.WriteString(tmpl[i:])
			break
		}
		start += i
		end := strings.Index(tmpl[start:], "}}")
		if end < 0 {
			out.WriteString(tmpl[i:])
			break
		}
		end += start

		name := tmpl[start+3 : end]
		lineStart := strings.LastIndexByte(tmpl[:start], '\n') + 1
		prefix := tmpl[lineStart:start]
		indent := prefix[:len(prefix)-len(strings.TrimLeft(prefix, "\t"))]

		out.WriteString(tmpl[i:start])
		out.WriteString(reindent(values[name], indent))

		i = end + 2
	}
	return out.String()
}

// reindent prefixes every line of v after the first with indent, so a
// multi-line macro value lines up under its token's indentation.
func reindent(v, indent string) string {
	if indent == "" || !strings.Contains(v, "\n") {
		return v
	}
	lines := strings.Split(v, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
