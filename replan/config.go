package replan

import (
	"time"

	"github.com/milk9111/gridnav/pathfind"
)

const DefaultInterval = 10 * time.Millisecond

// Config holds the trigger tunables.
type Config struct {
	// Interval is the minimum time between endpoint checks.
	Interval time.Duration `yaml:"interval"`
	// RecalculateOnTargetChange disables all replanning after the first path when false.
	RecalculateOnTargetChange bool `yaml:"recalculate_on_target_change"`
	// ClearOnFailure drops the held path when a replan finds no route.
	ClearOnFailure bool `yaml:"clear_on_failure"`
	// MaxExpansions caps each search. Zero means no cap.
	MaxExpansions int               `yaml:"max_expansions"`
	Frontier      pathfind.Frontier `yaml:"frontier"`
}

// DefaultConfig returns the settings used when a level does not override them.
func DefaultConfig() Config {
	return Config{
		Interval:                  DefaultInterval,
		RecalculateOnTargetChange: true,
		Frontier:                  pathfind.FrontierHeap,
	}
}

func (c Config) searchOptions() []pathfind.Option {
	opts := []pathfind.Option{pathfind.WithFrontier(c.Frontier)}
	if c.MaxExpansions > 0 {
		opts = append(opts, pathfind.WithMaxExpansions(c.MaxExpansions))
	}
	return opts
}
