// Package script implements the headless front end of the cell mapper: a small
// line-oriented command language that replays the same interactions a user
// performs on the grid.
//
//	# 2s1p pack on a 2x2 layout
//	configure 2 1 2 2
//	group 1
//	assign 0 0
//	assign 0 1 2     # one-off parallel group
//	print
//
// Arguments are captured verbatim so that integer parsing happens in the
// session, with the same user-facing messages as the interactive grid.
package script

import "github.com/alecthomas/participle/v2/lexer"

// Script is a parsed command file.
type Script struct {
	Statements []*Statement `@@*`
}

// Statement is one command.
type Statement struct {
	Pos lexer.Position

	Configure *Configure `  @@`
	Group     *Group     `| @@`
	Assign    *Assign    `| @@`
	Print     *Print     `| @@`
}

// Configure resets the grid: configure <ns> <np> <rows> <cols>
//
// Required arguments also accept keywords so that a misplaced one reaches the
// session as an invalid value rather than failing the parse.
type Configure struct {
	Ns   string `"configure" @(Word | Keyword)`
	Np   string `@(Word | Keyword)`
	Rows string `@(Word | Keyword)`
	Cols string `@(Word | Keyword)`
}

// Group sets the Parallel Group field: group <p>
type Group struct {
	Value string `"group" @(Word | Keyword)`
}

// Assign clicks a position: assign <row> <col> [p]
// The optional group is a plain word; a keyword there starts the next statement.
type Assign struct {
	Row   string  `"assign" @(Word | Keyword)`
	Col   string  `@(Word | Keyword)`
	Group *string `@Word?`
}

// Print emits the current serialization.
type Print struct {
	Keyword string `@"print"`
}

// Name returns the command keyword of the statement.
func (s *Statement) Name() string {
	switch {
	case s.Configure != nil:
		return "configure"
	case s.Group != nil:
		return "group"
	case s.Assign != nil:
		return "assign"
	case s.Print != nil:
		return "print"
	}
	return ""
}
