package degrade

import (
	"syncline/internal/align"
	"syncline/internal/features"
	"syncline/internal/preflight"
)

// Strategy names one recovery tactic.
type Strategy string

const (
	// StrategyReduceQuality shrinks the analysis window and relaxes the
	// noise gate. Cheaper and more tolerant, less accurate.
	StrategyReduceQuality Strategy = "reduce_quality"

	// StrategyFallbackMethod switches to a feature method better suited
	// to the measured signal quality.
	StrategyFallbackMethod Strategy = "fallback_method"

	// StrategyReducePrecision coarsens the correlation search by
	// enlarging the hop.
	StrategyReducePrecision Strategy = "reduce_precision"

	// StrategyAdaptiveParameters recomputes window, hop, and gate from
	// the quality report instead of applying fixed reductions.
	StrategyAdaptiveParameters Strategy = "adaptive_parameters"

	// StrategyProgressive tries the other strategies in increasing
	// severity order until one changes the request.
	StrategyProgressive Strategy = "progressive"
)

// Impact estimates what a strategy costs. ConfidenceLoss and
// AccuracyLossMS are expected worst-case degradations; SpeedupFactor is
// the expected throughput gain (1 = none).
type Impact struct {
	ConfidenceLoss float64
	AccuracyLossMS float64
	SpeedupFactor  float64
}

// Policy maps each degradation level to the strategies worth trying at
// it, in preference order. The default ladder starts with cheap
// parameter tweaks and ends with the progressive sweep.
type Policy map[Level][]Strategy

// DefaultPolicy returns the standard escalation ladder.
func DefaultPolicy() Policy {
	return Policy{
		LevelMinimal:     {StrategyAdaptiveParameters, StrategyReduceQuality},
		LevelModerate:    {StrategyFallbackMethod, StrategyReduceQuality},
		LevelSignificant: {StrategyReducePrecision, StrategyFallbackMethod},
		LevelEmergency:   {StrategyProgressive},
	}
}

// application is the outcome of applying one strategy: a modified
// request plus its impact estimate. changed is false when the strategy
// had nothing left to trade.
type application struct {
	config  align.Config
	method  features.Method
	impact  Impact
	changed bool
}

func applyStrategy(s Strategy, ctx Context) application {
	switch s {
	case StrategyReduceQuality:
		return reduceQuality(ctx)
	case StrategyFallbackMethod:
		return fallbackMethod(ctx)
	case StrategyReducePrecision:
		return reducePrecision(ctx)
	case StrategyAdaptiveParameters:
		return adaptiveParameters(ctx)
	case StrategyProgressive:
		return progressive(ctx)
	default:
		return application{config: ctx.Config, method: ctx.Method}
	}
}

func reduceQuality(ctx Context) application {
	out := application{config: ctx.Config, method: ctx.Method}
	cfg := &out.config

	if cfg.WindowSize/2 >= align.MinWindowSize {
		cfg.WindowSize /= 2
		if cfg.HopSize > cfg.WindowSize {
			cfg.HopSize = cfg.WindowSize
		}
		out.changed = true
	}
	if cfg.NoiseGateDB-10 >= align.MinNoiseGate {
		cfg.NoiseGateDB -= 10
		out.changed = true
	}
	if out.changed {
		out.impact = Impact{ConfidenceLoss: 0.05, AccuracyLossMS: 0, SpeedupFactor: 1.8}
	}
	return out
}

func fallbackMethod(ctx Context) application {
	out := application{config: ctx.Config, method: ctx.Method}
	next := recommendMethod(ctx.Method, ctx.Quality)
	if next == ctx.Method {
		return out
	}
	out.method = next
	out.changed = true
	out.impact = Impact{ConfidenceLoss: 0.1, AccuracyLossMS: 0, SpeedupFactor: 1.2}
	return out
}

// recommendMethod picks the method most likely to survive the measured
// signal quality. Energy correlation is the refuge of last resort: it
// needs no spectral structure at all.
func recommendMethod(current features.Method, quality *preflight.QualityReport) features.Method {
	if quality != nil {
		if quality.SilenceRatio > 0.5 || quality.SpectralRolloff < 500 {
			if current != features.MethodEnergy {
				return features.MethodEnergy
			}
			return current
		}
		if quality.ExcessiveClipping && current != features.MethodChroma {
			// Chroma folds harmonics per pitch class, which tolerates the
			// harmonic splatter clipping adds.
			return features.MethodChroma
		}
	}
	switch current {
	case features.MethodSpectralFlux:
		return features.MethodEnergy
	case features.MethodChroma:
		return features.MethodSpectralFlux
	case features.MethodMFCC:
		return features.MethodSpectralFlux
	default:
		return current
	}
}

func reducePrecision(ctx Context) application {
	out := application{config: ctx.Config, method: ctx.Method}
	cfg := &out.config
	if cfg.HopSize*2 > cfg.WindowSize {
		return out
	}
	cfg.HopSize *= 2
	out.changed = true
	hopMS := float64(cfg.HopSize) / 44.1
	out.impact = Impact{ConfidenceLoss: 0.02, AccuracyLossMS: hopMS, SpeedupFactor: 2}
	return out
}

func adaptiveParameters(ctx Context) application {
	out := application{config: ctx.Config, method: ctx.Method}
	if ctx.Quality == nil {
		return out
	}
	cfg := &out.config
	q := ctx.Quality

	// Quiet material: open the gate so that low-level content is not
	// discarded as silence.
	if q.SilenceRatio > 0.3 && cfg.NoiseGateDB-15 >= align.MinNoiseGate {
		cfg.NoiseGateDB -= 15
		out.changed = true
	}
	// Transient-rich material resolves fine with tighter framing; sparse
	// material needs the spectral stability of a bigger window.
	if q.GoodDynamicRange && cfg.WindowSize/2 >= align.MinWindowSize {
		cfg.WindowSize /= 2
		if cfg.HopSize > cfg.WindowSize {
			cfg.HopSize = cfg.WindowSize
		}
		out.changed = true
	} else if !q.GoodDynamicRange && cfg.WindowSize*2 <= align.MaxWindowSize {
		cfg.WindowSize *= 2
		out.changed = true
	}
	if out.changed {
		out.impact = Impact{ConfidenceLoss: 0.03, AccuracyLossMS: 0, SpeedupFactor: 1.1}
	}
	return out
}

// progressive sweeps the concrete strategies from mildest to harshest
// and returns the first that still has something to trade.
func progressive(ctx Context) application {
	order := []Strategy{
		StrategyAdaptiveParameters,
		StrategyReduceQuality,
		StrategyReducePrecision,
		StrategyFallbackMethod,
	}
	for _, s := range order {
		if ctx.attempted(s) {
			continue
		}
		if out := applyStrategy(s, ctx); out.changed {
			return out
		}
	}
	return application{config: ctx.Config, method: ctx.Method}
}
