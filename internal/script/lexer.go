package script

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// ScriptLexer defines the lexical structure of cellmap scripts.
// Keywords are case-insensitive; everything else is a bare word.
var ScriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments - shell style (# to end of line)
	{Name: "Comment", Pattern: `#[^\n]*`},

	// Whitespace, newlines and ';' all separate tokens
	{Name: "Whitespace", Pattern: `[\s;]+`},

	{Name: "Keyword", Pattern: `(?i)\b(configure|group|assign|print)\b`},

	// Arguments, kept verbatim
	{Name: "Word", Pattern: `[^\s;#]+`},
})
