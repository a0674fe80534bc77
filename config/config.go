package config

// OutputPrefs holds per-run output preferences.
type OutputPrefs struct {
	// Format of the final rendering ("markdown" or "plain").
	Format string `json:"format"`
	// IncludeAudit controls whether the run report carries the full stage
	// context or only the synthesized answer.
	IncludeAudit bool `json:"include_audit"`
}

// CouncilConfig is the effective per-run execution configuration. Every
// field is either taken from the supplied partial configuration or from the
// documented defaults; there is no third, undefined state.
type CouncilConfig struct {
	// ID identifies the prompt; defaults to the prompt id the run was
	// resolved for.
	ID string `json:"id"`
	// Title is free-form run metadata.
	Title string `json:"title,omitempty"`
	// Enabled gates the entire run; a disabled prompt invokes no stage.
	Enabled bool `json:"enabled"`
	// CouncilID names the council whose members convene for the run.
	CouncilID string `json:"council"`
	// Stages lists the stage numbers to run (1=gate .. 5=synthesize),
	// sorted ascending and deduplicated.
	Stages []int `json:"stages"`
	// Priority orders prompts in batch processing; higher runs first.
	Priority int `json:"priority"`
	// Seed, when set, makes member label assignment deterministic.
	Seed *int64 `json:"seed,omitempty"`
	// Variables are free-form inputs interpolated into literal prompt parts.
	Variables map[string]string `json:"variables,omitempty"`
	// Files lists auxiliary input files recorded for the run report.
	Files []string `json:"files,omitempty"`
	// Context is free-form text handed to the delegate stage.
	Context string `json:"context,omitempty"`
	// Output holds rendering preferences.
	Output OutputPrefs `json:"output"`
}

// HasStage reports whether a stage number is part of the run.
func (c *CouncilConfig) HasStage(n int) bool {
	for _, s := range c.Stages {
		if s == n {
			return true
		}
	}
	return false
}

// Defaults is the immutable process-wide default configuration context. It
// is constructed once at process start and passed by reference into every
// resolver, rather than living in ambient global state.
type Defaults struct {
	CouncilID    string
	Stages       []int
	OutputFormat string
	IncludeAudit bool
}

// NewDefaults builds the documented default configuration context.
// Overrides apply at construction time only; the value must be treated as
// read-only afterwards.
func NewDefaults(optFns ...func(d *Defaults)) *Defaults {
	d := &Defaults{
		CouncilID:    "ai-council",
		Stages:       []int{1, 2, 3, 4, 5},
		OutputFormat: "markdown",
		IncludeAudit: true,
	}
	for _, fn := range optFns {
		fn(d)
	}
	return d
}

// Config materializes the full default configuration for a prompt.
func (d *Defaults) Config(promptID string) CouncilConfig {
	stages := make([]int, len(d.Stages))
	copy(stages, d.Stages)
	return CouncilConfig{
		ID:        promptID,
		Enabled:   true,
		CouncilID: d.CouncilID,
		Stages:    stages,
		Variables: map[string]string{},
		Output: OutputPrefs{
			Format:       d.OutputFormat,
			IncludeAudit: d.IncludeAudit,
		},
	}
}
