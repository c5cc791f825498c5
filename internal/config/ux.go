package config

// UIConfig holds user interface configuration.
type UIConfig struct {
	// Theme is "light", "dark" or "auto" (detect from the terminal).
	Theme string `json:"theme" yaml:"theme"`

	// CellWidth is the rendered width of one grid cell, borders excluded.
	CellWidth int `json:"cell_width" yaml:"cell_width"`

	// OutputHeight is the number of lines reserved for the array output.
	OutputHeight int `json:"output_height" yaml:"output_height"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Theme:        "light",
		CellWidth:    6,
		OutputHeight: 6,
	}
}
