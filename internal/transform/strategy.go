// Package transform turns analysis output into reviewable, rollback-capable
// transformation plans.
package transform

import (
	arkerrors "arktools/internal/errors"
)

// Strategy is the transformation aggressiveness tier.
type Strategy string

const (
	StrategyConservative Strategy = "conservative"
	StrategyModerate     Strategy = "moderate"
	StrategyAggressive   Strategy = "aggressive"
)

// StrategyConfig is the fixed per-strategy configuration.
type StrategyConfig struct {
	SimilarityThreshold float64 `json:"similarity_threshold"`
	MaxChangesPerFile   int     `json:"max_changes_per_file"`
	PreserveComments    bool    `json:"preserve_comments"`
	PreserveFormatting  bool    `json:"preserve_formatting"`
}

// strategyTable is the closed strategy configuration table. The similarity
// threshold is the strategy's primary lever: lower admits more pairs.
var strategyTable = map[Strategy]StrategyConfig{
	StrategyConservative: {
		SimilarityThreshold: 0.95,
		MaxChangesPerFile:   3,
		PreserveComments:    true,
		PreserveFormatting:  true,
	},
	StrategyModerate: {
		SimilarityThreshold: 0.85,
		MaxChangesPerFile:   5,
		PreserveComments:    true,
		PreserveFormatting:  false,
	},
	StrategyAggressive: {
		SimilarityThreshold: 0.70,
		MaxChangesPerFile:   10,
		PreserveComments:    false,
		PreserveFormatting:  false,
	},
}

// ParseStrategy validates a strategy token.
func ParseStrategy(s string) (Strategy, error) {
	if _, ok := strategyTable[Strategy(s)]; !ok {
		return "", arkerrors.Newf(arkerrors.UnknownStrategy,
			"unknown strategy: %q (expected conservative, moderate, or aggressive)", s)
	}
	return Strategy(s), nil
}

// Config returns the strategy's fixed configuration.
func (s Strategy) Config() StrategyConfig {
	return strategyTable[s]
}
