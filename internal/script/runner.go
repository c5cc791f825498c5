package script

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cellmapper/internal/logging"
	"cellmapper/internal/mapping"
	"cellmapper/internal/session"
)

// Event is emitted for every executed statement.
// Notice is nil for statements that cannot fail (group, print).
// Output is set for print, and after every assign when EachClick is on.
type Event struct {
	Line    int
	Command string
	Notice  *session.Notice
	Output  string
}

// Sink receives events in statement order.
type Sink func(Event)

// Summary counts what happened during a run.
type Summary struct {
	Statements int
	Errors     int
	Infos      int
}

// Runner replays scripts against a session.
type Runner struct {
	sess      *session.Session
	failFast  bool
	eachClick bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithFailFast stops the run at the first rejected statement.
func WithFailFast(on bool) RunnerOption {
	return func(r *Runner) { r.failFast = on }
}

// WithEachClick emits the serialization after every assign, as the grid does.
func WithEachClick(on bool) RunnerOption {
	return func(r *Runner) { r.eachClick = on }
}

// NewRunner creates a runner bound to sess.
func NewRunner(sess *session.Session, opts ...RunnerOption) *Runner {
	r := &Runner{sess: sess}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Session returns the session the runner drives.
func (r *Runner) Session() *session.Session {
	return r.sess
}

// Run executes every statement in order. Rejected statements are reported to
// the sink and counted; with fail-fast the first one is also returned as error.
func (r *Runner) Run(ctx context.Context, sc *Script, sink Sink) (Summary, error) {
	timer := logging.StartTimer(logging.CategoryScript, "script run")
	defer timer.Stop()

	if sink == nil {
		sink = func(Event) {}
	}

	var sum Summary
	for _, st := range sc.Statements {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Statements++

		ev := r.exec(st)
		sink(ev)

		if ev.Notice == nil {
			continue
		}
		switch ev.Notice.Level {
		case session.LevelError:
			sum.Errors++
			logging.ScriptDebug("line %d: %s rejected: %v", ev.Line, ev.Command, ev.Notice.Err)
			if r.failFast {
				logging.ScriptError("aborted at line %d: %s: %v", ev.Line, ev.Command, ev.Notice.Err)
				return sum, fmt.Errorf("line %d: %s: %w", ev.Line, ev.Command, ev.Notice.Err)
			}
		case session.LevelInfo:
			sum.Infos++
		}
	}

	logging.Script("ran %d statements (%d errors, %d notices)", sum.Statements, sum.Errors, sum.Infos)
	return sum, nil
}

func (r *Runner) exec(st *Statement) Event {
	ev := Event{Line: st.Pos.Line, Command: st.Name()}

	switch {
	case st.Configure != nil:
		c := st.Configure
		n := r.sess.Configure(c.Ns, c.Np, c.Rows, c.Cols)
		ev.Notice = &n

	case st.Group != nil:
		r.sess.SetParallelGroup(st.Group.Value)

	case st.Assign != nil:
		n := r.assign(st.Assign)
		ev.Notice = &n
		if r.eachClick && !n.IsError() {
			ev.Output = r.sess.Output()
		}

	case st.Print != nil:
		ev.Output = r.sess.Output()
	}

	return ev
}

func (r *Runner) assign(a *Assign) session.Notice {
	row, err := parseCoord("row", a.Row)
	if err != nil {
		return session.Notice{Level: session.LevelError, Title: session.TitleError, Message: err.Error(), Err: err}
	}
	col, err := parseCoord("col", a.Col)
	if err != nil {
		return session.Notice{Level: session.LevelError, Title: session.TitleError, Message: err.Error(), Err: err}
	}
	if a.Group != nil {
		return r.sess.ClickWithGroup(row, col, *a.Group)
	}
	return r.sess.Click(row, col)
}

// parseCoord treats a non-integer coordinate as a position outside the grid.
func parseCoord(name, text string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", mapping.ErrOutOfBounds, name, text)
	}
	return v, nil
}
