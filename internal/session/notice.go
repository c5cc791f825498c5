package session

import "cellmapper/internal/mapping"

// Level is how a Notice should be surfaced to the user.
type Level int

const (
	LevelSuccess Level = iota // routine feedback, e.g. "cell 3 assigned"
	LevelInfo                 // informational notice, e.g. capacity reached
	LevelError                // the operation was rejected
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "ok"
	case LevelInfo:
		return "info"
	case LevelError:
		return "error"
	}
	return "unknown"
}

// User-facing texts.
const (
	TitleError = "Error"
	TitleInfo  = "Info"

	MsgInvalidIntegers      = "Enter valid integers"
	MsgInvalidParallelGroup = "Parallel group must be integer"
	MsgAllAssigned          = "All electrical cells assigned"
)

// Notice is the outcome of one user interaction.
// Err is set for LevelError notices; Result for successful clicks.
type Notice struct {
	Level   Level
	Title   string
	Message string
	Err     error
	Result  mapping.Result
}

// IsError reports whether the interaction was rejected.
func (n Notice) IsError() bool {
	return n.Level == LevelError
}

func errorNotice(msg string, err error) Notice {
	return Notice{Level: LevelError, Title: TitleError, Message: msg, Err: err}
}
