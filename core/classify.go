package core

import (
	"path/filepath"
	"strings"

	"github.com/gitattrib/gitattrib/schema"
	"github.com/src-d/enry/v2"
)

// commentSyntax describes the comment delimiters recognized for one language.
type commentSyntax struct {
	linePrefixes []string
	blockStart   string
	blockEnd     string
}

var cStyle = commentSyntax{linePrefixes: []string{"//"}, blockStart: "/*", blockEnd: "*/"}
var hashStyle = commentSyntax{linePrefixes: []string{"#"}}

// commentSyntaxByLanguage maps enry language names to comment delimiters.
// Languages not listed here have no recognizable comments: their non-empty,
// non-whitespace lines all classify as code.
var commentSyntaxByLanguage = map[string]commentSyntax{
	"C":           cStyle,
	"C++":         cStyle,
	"C#":          cStyle,
	"GLSL":        cStyle,
	"Go":          cStyle,
	"Java":        cStyle,
	"JavaScript":  cStyle,
	"Kotlin":      cStyle,
	"Objective-C": cStyle,
	"PHP":         {linePrefixes: []string{"//", "#"}, blockStart: "/*", blockEnd: "*/"},
	"Rust":        cStyle,
	"Scala":       cStyle,
	"Swift":       cStyle,
	"TypeScript":  cStyle,

	"Dockerfile": hashStyle,
	"Elixir":     hashStyle,
	"Makefile":   hashStyle,
	"Perl":       hashStyle,
	"Python":     {linePrefixes: []string{"#"}, blockStart: `"""`, blockEnd: `"""`},
	"R":          hashStyle,
	"Ruby":       {linePrefixes: []string{"#"}, blockStart: "=begin", blockEnd: "=end"},
	"Shell":      hashStyle,
	"TOML":       hashStyle,
	"YAML":       hashStyle,

	"CSS":  {blockStart: "/*", blockEnd: "*/"},
	"HTML": {blockStart: "<!--", blockEnd: "-->"},
	"Lua":  {linePrefixes: []string{"--"}, blockStart: "--[[", blockEnd: "]]"},
	"SQL":  {linePrefixes: []string{"--"}, blockStart: "/*", blockEnd: "*/"},
	"XML":  {blockStart: "<!--", blockEnd: "-->"},

	"Haskell": {linePrefixes: []string{"--"}, blockStart: "{-", blockEnd: "-}"},
	"OCaml":   {blockStart: "(*", blockEnd: "*)"},
}

// syntaxForPath resolves the comment syntax for a file from its filename via
// language detection. The zero syntax recognizes no comments.
func syntaxForPath(path string) commentSyntax {
	lang := enry.GetLanguage(filepath.Base(path), nil)
	return commentSyntaxByLanguage[lang]
}

// classifyLines assigns a category to every blame entry of one file.
// Entries must be in line order: block comment state carries top to bottom.
func classifyLines(path string, entries []schema.BlameEntry) {
	syntax := syntaxForPath(path)
	inBlock := false
	for i := range entries {
		entries[i].Category, inBlock = classifyLine(entries[i].Content, syntax, inBlock)
	}
}

// classifyLine categorizes a single line and returns the block comment state
// after the line.
func classifyLine(content string, syntax commentSyntax, inBlock bool) (schema.LineCategory, bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		if content == "" {
			return schema.EmptyLine, inBlock
		}
		return schema.WhitespaceLine, inBlock
	}

	if inBlock {
		if syntax.blockEnd != "" && strings.Contains(trimmed, syntax.blockEnd) {
			return schema.CommentLine, false
		}
		return schema.CommentLine, true
	}

	for _, prefix := range syntax.linePrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return schema.CommentLine, false
		}
	}

	if syntax.blockStart != "" && strings.HasPrefix(trimmed, syntax.blockStart) {
		rest := trimmed[len(syntax.blockStart):]
		if syntax.blockEnd != "" && strings.Contains(rest, syntax.blockEnd) {
			return schema.CommentLine, false
		}
		return schema.CommentLine, true
	}

	return schema.CodeLine, false
}

// markExclusions sets the Excluded flag on entries whose category is gated
// off by the content toggles. This is the orthogonal filter applied after
// classification; the blame_exclusions policy decides how flagged entries
// participate downstream.
func markExclusions(entries []schema.BlameEntry, st *schema.Settings) {
	for i := range entries {
		switch entries[i].Category {
		case schema.CommentLine:
			entries[i].Excluded = !st.Comments
		case schema.WhitespaceLine:
			entries[i].Excluded = !st.Whitespace
		case schema.EmptyLine:
			entries[i].Excluded = !st.EmptyLines
		default:
			entries[i].Excluded = false
		}
	}
}

// filterDetail applies the blame_exclusions policy to the per-line detail
// returned with results: "show" keeps flagged entries visible, "hide" and
// "remove" both drop them from the detail.
func filterDetail(entries []schema.BlameEntry, policy schema.BlameExclusions) []schema.BlameEntry {
	if policy == schema.ShowExclusions {
		return entries
	}
	kept := make([]schema.BlameEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Excluded {
			kept = append(kept, e)
		}
	}
	return kept
}
