// Capture configuration - what gets saved, where, and how the final prompt
// is reconstructed from message history.
package config

import "fmt"

// Extraction strategy names for CaptureConfig.Strategy.
const (
	StrategyLastOnly     = "last_only"      // Most recent user message wins
	StrategyFirstAndLast = "first_and_last" // Last user message, first as fallback
)

// CaptureConfig contains prompt capture behavior settings.
//
// Boolean fields are pointers so that "absent" is distinguishable from
// "explicitly false": absent fields default to enabled.
type CaptureConfig struct {
	Enabled        *bool  `yaml:"enabled"`          // Master switch (default true)
	CacheDir       string `yaml:"cache_dir"`        // Output directory (default: temp dir)
	SaveBeforeHook *bool  `yaml:"save_before_hook"` // Capture the pre-hook prompt (default true)
	SaveAfterHook  *bool  `yaml:"save_after_hook"`  // Capture the final prompt (default true)
	Strategy       string `yaml:"strategy"`         // Extraction strategy (default first_and_last)

	// WriteBeforeImmediately fires a best-effort write of the before-stage
	// prompt as soon as it is observed, instead of only at turn end. Off by
	// default: the write is redundant unless the turn never completes.
	WriteBeforeImmediately bool `yaml:"write_before_immediately"`
}

func (c *CaptureConfig) applyDefaults() {
	enabled := true
	if c.Enabled == nil {
		c.Enabled = &enabled
	}
	if c.SaveBeforeHook == nil {
		v := true
		c.SaveBeforeHook = &v
	}
	if c.SaveAfterHook == nil {
		v := true
		c.SaveAfterHook = &v
	}
	if c.Strategy == "" {
		c.Strategy = StrategyFirstAndLast
	}
}

// Validate checks capture settings.
func (c *CaptureConfig) Validate() error {
	switch c.Strategy {
	case StrategyLastOnly, StrategyFirstAndLast:
	default:
		return fmt.Errorf("invalid capture.strategy: %s (must be %s or %s)",
			c.Strategy, StrategyLastOnly, StrategyFirstAndLast)
	}
	return nil
}

// IsEnabled reports the effective master switch.
func (c *CaptureConfig) IsEnabled() bool {
	return c.Enabled != nil && *c.Enabled
}

// BeforeEnabled reports whether before-stage capture is active.
func (c *CaptureConfig) BeforeEnabled() bool {
	return c.IsEnabled() && c.SaveBeforeHook != nil && *c.SaveBeforeHook
}

// AfterEnabled reports whether after-stage capture is active.
func (c *CaptureConfig) AfterEnabled() bool {
	return c.IsEnabled() && c.SaveAfterHook != nil && *c.SaveAfterHook
}
