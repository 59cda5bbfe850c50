package degrade

import (
	"log/slog"
	"sync"
	"time"

	"syncline/internal/align"
	"syncline/internal/features"
	"syncline/internal/logging"
	"syncline/internal/preflight"
)

// Context describes a failed attempt: what went wrong, how degraded the
// request already is, and what the signal looks like. Request-scoped and
// never persisted.
type Context struct {
	Err       error
	Level     Level
	Attempted []Strategy
	Quality   *preflight.QualityReport
	Config    align.Config
	Method    features.Method

	Constraints ResourceConstraints
}

func (c Context) attempted(s Strategy) bool {
	for _, a := range c.Attempted {
		if a == s {
			return true
		}
	}
	return false
}

// Result is the coordinator's recommendation. When CanRecover is false
// the orchestrator should surface the original failure.
type Result struct {
	CanRecover        bool
	LevelApplied      Level
	StrategyUsed      Strategy
	RecommendedMethod features.Method
	ModifiedConfig    align.Config
	Impact            Impact
	Reason            string
}

// Attempt records one coordinator decision for inspection.
type Attempt struct {
	Time       time.Time
	Level      Level
	Strategy   Strategy
	CanRecover bool
}

// Coordinator selects recovery strategies. Safe for concurrent use; the
// attempt log is shared across requests so operators can see how often
// the engine is running degraded.
type Coordinator struct {
	logger *slog.Logger
	policy Policy

	mu       sync.Mutex
	attempts []Attempt

	// probe is swappable for tests.
	probe func() ResourceConstraints
}

// NewCoordinator builds a coordinator with the given policy, or the
// default ladder when policy is nil.
func NewCoordinator(logger *slog.Logger, policy Policy) *Coordinator {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Coordinator{
		logger: logging.NewComponentLogger(logger, "degrade"),
		policy: policy,
		probe:  ProbeResources,
	}
}

// AttemptRecovery escalates one level and applies the first applicable
// strategy from the policy at that level. Strategies already attempted
// are skipped; under memory pressure, strategies that shrink the working
// set are preferred regardless of policy order.
func (c *Coordinator) AttemptRecovery(ctx Context) Result {
	next := ctx.Level.Next()
	result := Result{
		LevelApplied:      next,
		RecommendedMethod: ctx.Method,
		ModifiedConfig:    ctx.Config,
	}

	if ctx.Level >= LevelEmergency {
		result.LevelApplied = LevelEmergency
		result.Reason = "emergency level reached"
		c.record(result)
		return result
	}

	if ctx.Constraints == (ResourceConstraints{}) {
		ctx.Constraints = c.probe()
	}

	for _, strategy := range c.ordered(next, ctx.Constraints) {
		if ctx.attempted(strategy) {
			continue
		}
		out := applyStrategy(strategy, ctx)
		if !out.changed {
			continue
		}
		result.CanRecover = true
		result.StrategyUsed = strategy
		result.RecommendedMethod = out.method
		result.ModifiedConfig = out.config
		result.Impact = out.impact
		c.record(result)
		c.logger.Info("degraded retry recommended",
			logging.String("strategy", string(strategy)),
			logging.String("level", next.String()),
			logging.String(logging.FieldMethod, out.method.String()),
			logging.Float64("confidence_loss", out.impact.ConfidenceLoss),
		)
		return result
	}

	result.Reason = "no strategy left to apply"
	c.record(result)
	return result
}

// ordered returns the policy strategies for the level, with the
// memory-shrinking ones moved to the front under pressure.
func (c *Coordinator) ordered(level Level, constraints ResourceConstraints) []Strategy {
	strategies := c.policy[level]
	if !constraints.LowMemory {
		return strategies
	}
	front := make([]Strategy, 0, len(strategies))
	back := make([]Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s == StrategyReduceQuality || s == StrategyReducePrecision {
			front = append(front, s)
		} else {
			back = append(back, s)
		}
	}
	return append(front, back...)
}

func (c *Coordinator) record(result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts = append(c.attempts, Attempt{
		Time:       time.Now(),
		Level:      result.LevelApplied,
		Strategy:   result.StrategyUsed,
		CanRecover: result.CanRecover,
	})
}

// Attempts returns a copy of the attempt log.
func (c *Coordinator) Attempts() []Attempt {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Attempt, len(c.attempts))
	copy(out, c.attempts)
	return out
}

// Reset clears the attempt log.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts = nil
}
