// Package mapping holds the battery pack cell map: which physical grid position carries
// which electrical cell (series index, parallel group), and its flat array rendering
// for the Modelica pack model.
//
// A CellMapping is a plain value owned by a single caller. It is not safe for
// concurrent use and does no locking.
package mapping

import (
	"fmt"
	"math"
	"sort"

	"cellmapper/internal/logging"
)

// PackConfig describes the electrical pack (Ns series x Np parallel) and the
// physical layout grid it is mapped onto.
type PackConfig struct {
	Ns   int `yaml:"ns" json:"ns"`
	Np   int `yaml:"np" json:"np"`
	Rows int `yaml:"rows" json:"rows"`
	Cols int `yaml:"cols" json:"cols"`
}

// Capacity is the number of electrical cells in the pack.
func (c PackConfig) Capacity() int {
	return c.Ns * c.Np
}

// Validate reports ErrInvalidConfig when any dimension is non-positive or the
// capacity does not fit in an int.
func (c PackConfig) Validate() error {
	if c.Ns <= 0 || c.Np <= 0 || c.Rows <= 0 || c.Cols <= 0 {
		return fmt.Errorf("%w: ns=%d np=%d rows=%d cols=%d must all be positive",
			ErrInvalidConfig, c.Ns, c.Np, c.Rows, c.Cols)
	}
	if c.Ns > math.MaxInt/c.Np {
		return fmt.Errorf("%w: capacity %d x %d overflows", ErrInvalidConfig, c.Ns, c.Np)
	}
	return nil
}

// Position is a 0-based grid coordinate.
type Position struct {
	Row int
	Col int
}

// CellEntry is the electrical identity of one mapped position.
// X and Y are the 1-based physical coordinates (row+1, col+1).
type CellEntry struct {
	Series        int `json:"s"`
	ParallelGroup int `json:"p"`
	X             int `json:"x"`
	Y             int `json:"y"`
}

// Status classifies the outcome of an Assign call that did not fail.
type Status int

const (
	StatusAssigned        Status = iota + 1 // new entry created
	StatusUpdated                           // parallel group of an existing entry replaced
	StatusCapacityReached                   // every electrical cell is already placed
)

func (s Status) String() string {
	switch s {
	case StatusAssigned:
		return "assigned"
	case StatusUpdated:
		return "updated"
	case StatusCapacityReached:
		return "capacity_reached"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is returned by Assign. Series is zero for StatusCapacityReached.
type Result struct {
	Status Status
	Series int
}

// CellMapping owns the position table, the series counter and the pack config.
type CellMapping struct {
	cfg        PackConfig
	configured bool
	entries    map[Position]*CellEntry
	next       int
}

// New returns an unconfigured mapping. Every Assign fails with ErrOutOfBounds
// until Configure succeeds.
func New() *CellMapping {
	return &CellMapping{
		entries: make(map[Position]*CellEntry),
		next:    1,
	}
}

// NewConfigured is New followed by Configure.
func NewConfigured(cfg PackConfig) (*CellMapping, error) {
	m := New()
	if err := m.Configure(cfg.Ns, cfg.Np, cfg.Rows, cfg.Cols); err != nil {
		return nil, err
	}
	return m, nil
}

// Configure discards every entry, resets the series counter to 1 and stores the
// new dimensions. On error the previous state is kept as is.
func (m *CellMapping) Configure(ns, np, rows, cols int) error {
	cfg := PackConfig{Ns: ns, Np: np, Rows: rows, Cols: cols}
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.cfg = cfg
	m.configured = true
	m.entries = make(map[Position]*CellEntry)
	m.next = 1
	logging.Mapping("configured %ds%dp on %dx%d grid (capacity %d)", ns, np, rows, cols, cfg.Capacity())
	return nil
}

// Assign maps (row, col) to the next series index, or updates the parallel
// group if the position is already mapped.
//
// Running out of electrical cells is not an error: the call returns
// StatusCapacityReached and leaves the mapping untouched.
func (m *CellMapping) Assign(row, col, parallelGroup int) (Result, error) {
	if !m.inBounds(row, col) {
		return Result{}, fmt.Errorf("%w: (%d, %d) outside %dx%d grid",
			ErrOutOfBounds, row, col, m.cfg.Rows, m.cfg.Cols)
	}

	pos := Position{Row: row, Col: col}
	if e, ok := m.entries[pos]; ok {
		e.ParallelGroup = parallelGroup
		return Result{Status: StatusUpdated, Series: e.Series}, nil
	}

	if m.next > m.cfg.Capacity() {
		logging.MappingDebug("(%d,%d) refused: all %d cells placed", row, col, m.cfg.Capacity())
		return Result{Status: StatusCapacityReached}, nil
	}

	series := m.next
	m.entries[pos] = &CellEntry{
		Series:        series,
		ParallelGroup: parallelGroup,
		X:             row + 1,
		Y:             col + 1,
	}
	m.next++
	logging.MappingDebug("series %d at (%d,%d) p=%d", series, row, col, parallelGroup)
	return Result{Status: StatusAssigned, Series: series}, nil
}

func (m *CellMapping) inBounds(row, col int) bool {
	return m.configured &&
		row >= 0 && row < m.cfg.Rows &&
		col >= 0 && col < m.cfg.Cols
}

// Config returns the active pack config (zero before the first Configure).
func (m *CellMapping) Config() PackConfig {
	return m.cfg
}

// Configured reports whether Configure has succeeded at least once.
func (m *CellMapping) Configured() bool {
	return m.configured
}

// Capacity returns Ns*Np for the active config.
func (m *CellMapping) Capacity() int {
	return m.cfg.Capacity()
}

// Len returns the number of mapped positions.
func (m *CellMapping) Len() int {
	return len(m.entries)
}

// Remaining returns how many electrical cells are still unplaced.
func (m *CellMapping) Remaining() int {
	return m.cfg.Capacity() - len(m.entries)
}

// Lookup returns a copy of the entry at (row, col).
func (m *CellMapping) Lookup(row, col int) (CellEntry, bool) {
	e, ok := m.entries[Position{Row: row, Col: col}]
	if !ok {
		return CellEntry{}, false
	}
	return *e, true
}

// Entries returns copies of all entries ordered by series index.
func (m *CellMapping) Entries() []CellEntry {
	out := make([]CellEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Series < out[j].Series })
	return out
}
