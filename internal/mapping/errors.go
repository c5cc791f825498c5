package mapping

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidConfig is returned when a pack dimension is missing, non-integer or non-positive.
	ErrInvalidConfig = errors.New("invalid pack configuration")

	// ErrOutOfBounds is returned when a position lies outside the configured grid.
	ErrOutOfBounds = errors.New("position out of bounds")

	// ErrInvalidParallelGroup is returned when the parallel group is not an integer.
	ErrInvalidParallelGroup = errors.New("invalid parallel group")
)

// ParseParallelGroup parses the user-entered parallel group. Surrounding
// whitespace is ignored; any integer, including zero and negatives, is accepted.
func ParseParallelGroup(text string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidParallelGroup, text)
	}
	return p, nil
}

// ParseConfig parses the four user-entered pack dimensions and validates them.
func ParseConfig(ns, np, rows, cols string) (PackConfig, error) {
	fields := [4]string{ns, np, rows, cols}
	names := [4]string{"Ns", "Np", "Rows", "Columns"}
	var vals [4]int
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return PackConfig{}, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, names[i], f)
		}
		vals[i] = v
	}
	cfg := PackConfig{Ns: vals[0], Np: vals[1], Rows: vals[2], Cols: vals[3]}
	if err := cfg.Validate(); err != nil {
		return PackConfig{}, err
	}
	return cfg, nil
}
