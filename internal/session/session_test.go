package session

import (
	"os"
	"path/filepath"
	"testing"

	"cellmapper/internal/logging"
	"cellmapper/internal/mapping"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configured(t *testing.T, ns, np, rows, cols string) *Session {
	t.Helper()
	s := New(WithID("test"))
	n := s.Configure(ns, np, rows, cols)
	require.False(t, n.IsError(), "configure: %+v", n)
	return s
}

func TestNew_Defaults(t *testing.T) {
	s := New()
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, DefaultParallelGroup, s.ParallelGroup())
	assert.False(t, s.Configured())
	assert.Equal(t, "[]", s.Output())

	s = New(WithParallelGroup("4"), WithID("abc"))
	assert.Equal(t, "4", s.ParallelGroup())
	assert.Equal(t, "abc", s.ID())
}

func TestConfigure_InvalidIntegers(t *testing.T) {
	s := configured(t, "2", "1", "2", "2")
	s.Click(0, 0)

	for _, in := range [][4]string{
		{"", "1", "2", "2"},
		{"two", "1", "2", "2"},
		{"2", "1", "0", "2"},
		{"2", "-1", "2", "2"},
	} {
		n := s.Configure(in[0], in[1], in[2], in[3])
		assert.True(t, n.IsError())
		assert.Equal(t, TitleError, n.Title)
		assert.Equal(t, MsgInvalidIntegers, n.Message)
		assert.ErrorIs(t, n.Err, mapping.ErrInvalidConfig)
	}

	// Previous grid survives.
	assert.Equal(t, mapping.PackConfig{Ns: 2, Np: 1, Rows: 2, Cols: 2}, s.Pack())
	assert.Equal(t, "[1,1,1,1]", s.Output())
}

func TestClick_EndToEnd(t *testing.T) {
	s := configured(t, "2", "1", "2", "2")

	n := s.Click(0, 0)
	assert.Equal(t, LevelSuccess, n.Level)
	assert.Equal(t, mapping.Result{Status: mapping.StatusAssigned, Series: 1}, n.Result)
	assert.Equal(t, MarkFresh, s.Mark(0, 0))

	s.SetParallelGroup("2")
	n = s.Click(0, 1)
	assert.Equal(t, mapping.Result{Status: mapping.StatusAssigned, Series: 2}, n.Result)

	s.SetParallelGroup("5")
	n = s.Click(0, 0)
	assert.Equal(t, mapping.Result{Status: mapping.StatusUpdated, Series: 1}, n.Result)
	assert.Equal(t, MarkRevisited, s.Mark(0, 0))
	assert.Equal(t, MarkFresh, s.Mark(0, 1))

	last, ok := s.LastCell()
	require.True(t, ok)
	assert.Equal(t, mapping.Position{Row: 0, Col: 0}, last)

	assert.Equal(t, "[1,5,1,1;2,2,1,2]", s.Output())
}

func TestClick_InvalidParallelGroup(t *testing.T) {
	s := configured(t, "2", "2", "2", "2")
	s.SetParallelGroup("abc")

	n := s.Click(0, 0)
	assert.True(t, n.IsError())
	assert.Equal(t, MsgInvalidParallelGroup, n.Message)
	assert.ErrorIs(t, n.Err, mapping.ErrInvalidParallelGroup)
	assert.Equal(t, "[]", s.Output())
	assert.Equal(t, MarkNone, s.Mark(0, 0))

	// The field stays editable; the next click with a valid value goes through.
	s.SetParallelGroup(" 3 ")
	n = s.Click(0, 0)
	assert.False(t, n.IsError())
	assert.Equal(t, "[1,3,1,1]", s.Output())
}

func TestClick_OutOfBounds(t *testing.T) {
	s := configured(t, "2", "1", "2", "2")
	s.Click(1, 1)
	before := s.Output()

	n := s.Click(5, 5)
	assert.True(t, n.IsError())
	assert.ErrorIs(t, n.Err, mapping.ErrOutOfBounds)
	assert.Contains(t, n.Message, "outside the grid")
	assert.Equal(t, before, s.Output())
}

func TestClick_BeforeConfigure(t *testing.T) {
	s := New()
	n := s.Click(0, 0)
	assert.ErrorIs(t, n.Err, mapping.ErrOutOfBounds)
}

func TestClick_CapacityReachedIsInfo(t *testing.T) {
	s := configured(t, "2", "1", "2", "2")
	s.Click(0, 0)
	s.Click(0, 1)

	n := s.Click(1, 0)
	assert.False(t, n.IsError())
	assert.Equal(t, LevelInfo, n.Level)
	assert.Equal(t, TitleInfo, n.Title)
	assert.Equal(t, MsgAllAssigned, n.Message)
	assert.Equal(t, mapping.StatusCapacityReached, n.Result.Status)
	assert.Equal(t, MarkNone, s.Mark(1, 0))

	placed, capacity := s.Progress()
	assert.Equal(t, 2, placed)
	assert.Equal(t, 2, capacity)
}

func TestClickWithGroup_DoesNotTouchField(t *testing.T) {
	s := configured(t, "3", "1", "1", "3")
	s.ClickWithGroup(0, 2, "9")
	assert.Equal(t, DefaultParallelGroup, s.ParallelGroup())

	got, ok := s.Cell(0, 2)
	require.True(t, ok)
	if diff := cmp.Diff(mapping.CellEntry{Series: 1, ParallelGroup: 9, X: 1, Y: 3}, got); diff != "" {
		t.Errorf("cell mismatch (-want +got):\n%s", diff)
	}
}

func TestReconfigureClearsMarks(t *testing.T) {
	s := configured(t, "2", "2", "2", "2")
	s.Click(0, 0)
	s.Click(0, 0)
	require.Equal(t, MarkRevisited, s.Mark(0, 0))

	n := s.ConfigurePack(mapping.PackConfig{Ns: 2, Np: 2, Rows: 2, Cols: 2})
	require.False(t, n.IsError())
	assert.Equal(t, MarkNone, s.Mark(0, 0))
	_, ok := s.LastCell()
	assert.False(t, ok)
	assert.Empty(t, s.Entries())

	n = s.Click(1, 1)
	assert.Equal(t, 1, n.Result.Series)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "ok", LevelSuccess.String())
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "error", LevelError.String())
}

func TestSession_WritesAuditTrail(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, logging.Initialize(ws, logging.Config{DebugMode: true}))
	t.Cleanup(func() {
		logging.CloseAll()
		_ = logging.Initialize(t.TempDir(), logging.Config{})
	})

	s := New(WithID("audit-1"))
	s.Configure("1", "1", "1", "2")
	s.Click(0, 0)
	s.Click(0, 1)
	s.Click(3, 3)
	logging.CloseAll()

	matches, err := filepath.Glob(filepath.Join(ws, ".cellmap", "logs", "*_audit.jsonl"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `"session":"audit-1"`)
	for _, ev := range []string{"session_start", "grid_configure", "cell_assign", "capacity_reached", "click_rejected"} {
		assert.Contains(t, text, `"event":"`+ev+`"`)
	}
}
