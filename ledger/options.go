package ledger

import (
	"fmt"
	"math"
)

// DefaultKeywords are the productivity keywords that raise an interaction's weight.
var DefaultKeywords = []string{"solution", "breakthrough", "insight", "refined", "consensus"}

const (
	// DefaultThreshold is the mean weight at which consensus is reached.
	DefaultThreshold = 10.0
	// DefaultBaseWeight is the weight every interaction starts from.
	DefaultBaseWeight = 1.0
	// DefaultKeywordBonus is added once per matched productivity keyword.
	DefaultKeywordBonus = 1.0
	// DefaultAgreementBoost is added per agreeing copilot.
	DefaultAgreementBoost = 0.5
	// DefaultDepthMultiplier rewards later, more refined contributions.
	DefaultDepthMultiplier = 1.2
	// DefaultDevilsAdvocateFactor damps the devil's advocate's contributions.
	DefaultDevilsAdvocateFactor = 0.7
)

// Options configures the scoring constants of a Ledger.
type Options struct {
	// Threshold is the mean weight over the roster at which consensus is reached.
	Threshold float64
	// Keywords are matched as case-sensitive substrings of a reply.
	Keywords []string
	// BaseWeight is the starting weight of each interaction.
	BaseWeight float64
	// KeywordBonus is added for each keyword found in a reply.
	KeywordBonus float64
	// AgreementBoost is added per agreeing copilot.
	AgreementBoost float64
	// DepthMultiplier is raised to the interaction depth.
	DepthMultiplier float64
	// DevilsAdvocate names the roster member whose contributions are damped.
	// Empty disables the role.
	DevilsAdvocate string
	// DevilsAdvocateFactor multiplies the devil's advocate's contributions.
	DevilsAdvocateFactor float64
}

// DefaultOptions returns the standard scoring configuration.
func DefaultOptions() Options {
	return Options{
		Threshold:            DefaultThreshold,
		Keywords:             append([]string(nil), DefaultKeywords...),
		BaseWeight:           DefaultBaseWeight,
		KeywordBonus:         DefaultKeywordBonus,
		AgreementBoost:       DefaultAgreementBoost,
		DepthMultiplier:      DefaultDepthMultiplier,
		DevilsAdvocateFactor: DefaultDevilsAdvocateFactor,
	}
}

func (o Options) validate() error {
	switch {
	case math.IsNaN(o.Threshold) || o.Threshold < 0:
		return fmt.Errorf("%w: threshold must be >= 0, got %v", ErrInvalidConfig, o.Threshold)
	case len(o.Keywords) == 0:
		return fmt.Errorf("%w: keyword set must not be empty", ErrInvalidConfig)
	case o.BaseWeight < 0:
		return fmt.Errorf("%w: base weight must be >= 0, got %v", ErrInvalidConfig, o.BaseWeight)
	case o.KeywordBonus < 0:
		return fmt.Errorf("%w: keyword bonus must be >= 0, got %v", ErrInvalidConfig, o.KeywordBonus)
	case o.AgreementBoost < 0:
		return fmt.Errorf("%w: agreement boost must be >= 0, got %v", ErrInvalidConfig, o.AgreementBoost)
	case o.DepthMultiplier <= 0:
		return fmt.Errorf("%w: depth multiplier must be > 0, got %v", ErrInvalidConfig, o.DepthMultiplier)
	case o.DevilsAdvocateFactor <= 0 || o.DevilsAdvocateFactor > 1:
		return fmt.Errorf("%w: devil's advocate factor must be in (0, 1], got %v", ErrInvalidConfig, o.DevilsAdvocateFactor)
	}
	for _, kw := range o.Keywords {
		if kw == "" {
			return fmt.Errorf("%w: keywords must not be blank", ErrInvalidConfig)
		}
	}
	return nil
}
