package dedupe

import "fmt"

// DefaultSimilarityThreshold is the combined title/description similarity a
// comparable pair must exceed to count as a fuzzy duplicate.
const DefaultSimilarityThreshold = 0.70

// Config holds configuration for duplicate detection.
type Config struct {
	// SimilarityThreshold is the exclusive lower bound (0.0-1.0) on combined
	// similarity for a fuzzy match. 1.0 disables fuzzy matching entirely and
	// leaves only source-identity matches.
	SimilarityThreshold float64
}

// DefaultConfig returns the default detection configuration.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: DefaultSimilarityThreshold,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.SimilarityThreshold <= 0.0 || c.SimilarityThreshold > 1.0 {
		return fmt.Errorf("%w: similarity_threshold must be above 0.0 and at most 1.0 (got %.2f)",
			ErrValidation, c.SimilarityThreshold)
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("Config{Threshold: %.2f}", c.SimilarityThreshold)
}
