// Package session implements the collaborator side of the cell mapper: it turns
// raw user input (dimension fields, the Parallel Group field, grid clicks) into
// calls on a mapping.CellMapping and reports every outcome as a Notice.
//
// Both the interactive grid and the script runner drive a Session, so the two
// front ends surface exactly the same errors and messages.
package session

import (
	"errors"
	"fmt"

	"cellmapper/internal/logging"
	"cellmapper/internal/mapping"

	"github.com/google/uuid"
)

// DefaultParallelGroup is the initial content of the Parallel Group field.
const DefaultParallelGroup = "1"

// Mark is the presentation state of a mapped position.
type Mark int

const (
	MarkNone      Mark = iota
	MarkFresh          // assigned, not revisited since
	MarkRevisited      // parallel group updated at least once
)

// Session owns one CellMapping for the lifetime of a UI or script run.
// Like the mapping itself it is not safe for concurrent use.
type Session struct {
	id       string
	cells    *mapping.CellMapping
	group    string
	marks    map[mapping.Position]Mark
	lastCell *mapping.Position
	log      *logging.Logger
	audit    *logging.AuditLogger
}

// Option configures a Session.
type Option func(*Session)

// WithParallelGroup sets the initial Parallel Group field text.
func WithParallelGroup(text string) Option {
	return func(s *Session) { s.group = text }
}

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// New creates an unconfigured session.
func New(opts ...Option) *Session {
	s := &Session{
		id:    uuid.New().String(),
		cells: mapping.New(),
		group: DefaultParallelGroup,
		marks: make(map[mapping.Position]Mark),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.Get(logging.CategorySession).With("session", s.id)
	s.audit = logging.AuditWithSession(s.id)
	s.audit.SessionStart()
	return s
}

// ID returns the session's correlation ID.
func (s *Session) ID() string { return s.id }

// Configure parses the four dimension fields and resets the mapping.
// On failure the previous grid and mapping stay in place.
func (s *Session) Configure(ns, np, rows, cols string) Notice {
	cfg, err := mapping.ParseConfig(ns, np, rows, cols)
	if err != nil {
		s.log.Warn("configure rejected: %v", err)
		s.audit.Log(logging.AuditEvent{EventType: logging.AuditGridConfigure, Error: err.Error()})
		return errorNotice(MsgInvalidIntegers, err)
	}
	return s.ConfigurePack(cfg)
}

// ConfigurePack is Configure for already-typed dimensions.
func (s *Session) ConfigurePack(cfg mapping.PackConfig) Notice {
	err := s.cells.Configure(cfg.Ns, cfg.Np, cfg.Rows, cfg.Cols)
	s.audit.Configure(cfg.Ns, cfg.Np, cfg.Rows, cfg.Cols, err)
	if err != nil {
		s.log.Warn("configure rejected: %v", err)
		return errorNotice(MsgInvalidIntegers, err)
	}
	s.marks = make(map[mapping.Position]Mark)
	s.lastCell = nil
	s.log.Info("configured ns=%d np=%d rows=%d cols=%d", cfg.Ns, cfg.Np, cfg.Rows, cfg.Cols)
	return Notice{
		Level:   LevelSuccess,
		Message: fmt.Sprintf("Grid %dx%d ready, %d cells to place", cfg.Rows, cfg.Cols, cfg.Capacity()),
	}
}

// SetParallelGroup replaces the Parallel Group field text. It is validated only
// when a cell is clicked.
func (s *Session) SetParallelGroup(text string) {
	s.group = text
}

// ParallelGroup returns the Parallel Group field text.
func (s *Session) ParallelGroup() string {
	return s.group
}

// Click assigns (row, col) using the current Parallel Group field.
func (s *Session) Click(row, col int) Notice {
	return s.ClickWithGroup(row, col, s.group)
}

// ClickWithGroup assigns (row, col) using an explicit group text.
func (s *Session) ClickWithGroup(row, col int, groupText string) Notice {
	p, err := mapping.ParseParallelGroup(groupText)
	if err != nil {
		s.log.Debug("click (%d,%d) rejected: %v", row, col, err)
		s.audit.Click("", row, col, 0, 0, err)
		return errorNotice(MsgInvalidParallelGroup, err)
	}

	res, err := s.cells.Assign(row, col, p)
	if err != nil {
		s.log.Debug("click (%d,%d) rejected: %v", row, col, err)
		s.audit.Click("", row, col, 0, p, err)
		msg := err.Error()
		if errors.Is(err, mapping.ErrOutOfBounds) {
			msg = fmt.Sprintf("Position (%d, %d) is outside the grid", row, col)
		}
		return errorNotice(msg, err)
	}

	pos := mapping.Position{Row: row, Col: col}
	switch res.Status {
	case mapping.StatusCapacityReached:
		s.log.Debug("click (%d,%d): capacity reached", row, col)
		s.audit.Click(logging.AuditCapacityReached, row, col, 0, p, nil)
		return Notice{Level: LevelInfo, Title: TitleInfo, Message: MsgAllAssigned, Result: res}
	case mapping.StatusUpdated:
		s.marks[pos] = MarkRevisited
		s.lastCell = &pos
		s.log.Debug("cell %d at (%d,%d) regrouped to p=%d", res.Series, row, col, p)
		s.audit.Click(logging.AuditCellUpdate, row, col, res.Series, p, nil)
		return Notice{
			Level:   LevelSuccess,
			Message: fmt.Sprintf("Cell %d moved to parallel group %d", res.Series, p),
			Result:  res,
		}
	default:
		s.marks[pos] = MarkFresh
		s.lastCell = &pos
		s.log.Debug("cell %d assigned at (%d,%d) p=%d", res.Series, row, col, p)
		s.audit.Click(logging.AuditCellAssign, row, col, res.Series, p, nil)
		return Notice{
			Level:   LevelSuccess,
			Message: fmt.Sprintf("Cell %d assigned to parallel group %d", res.Series, p),
			Result:  res,
		}
	}
}

// Output returns the current Modelica array text.
func (s *Session) Output() string {
	return s.cells.Serialize()
}

// Mark returns the presentation mark of a position.
func (s *Session) Mark(row, col int) Mark {
	return s.marks[mapping.Position{Row: row, Col: col}]
}

// LastCell returns the most recently clicked mapped position, if any.
func (s *Session) LastCell() (mapping.Position, bool) {
	if s.lastCell == nil {
		return mapping.Position{}, false
	}
	return *s.lastCell, true
}

// Cell returns the entry at (row, col), if mapped.
func (s *Session) Cell(row, col int) (mapping.CellEntry, bool) {
	return s.cells.Lookup(row, col)
}

// Configured reports whether a grid exists.
func (s *Session) Configured() bool {
	return s.cells.Configured()
}

// Pack returns the active pack config.
func (s *Session) Pack() mapping.PackConfig {
	return s.cells.Config()
}

// Entries returns the mapped cells in series order.
func (s *Session) Entries() []mapping.CellEntry {
	return s.cells.Entries()
}

// Progress returns (placed, capacity).
func (s *Session) Progress() (int, int) {
	return s.cells.Len(), s.cells.Capacity()
}
