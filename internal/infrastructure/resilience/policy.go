package resilience

import "time"

// Operation names used by the engine adapters. They also label breaker
// state metrics.
const (
	OpOllamaGenerate   = "ollama.generate"
	OpOpenAIChat       = "openai.chat"
	OpOpenAITranscribe = "openai.transcribe"
	OpNATSPublish      = "nats.publish"
)

// RetryPolicy overrides the global retry settings for one operation.
// Zero fields inherit the global value.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64

	// Operations holds per-operation retry overrides.
	Operations map[string]RetryPolicy
	// Budgets bounds the wall time one call of an operation may take,
	// typically the caller's context timeout. Backoff sleeps are capped at
	// half of it so the final attempt still has time to run.
	Budgets map[string]time.Duration

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     400 * time.Millisecond,
		RetryMultiplier:     2.0,

		Operations: map[string]RetryPolicy{
			// A transcription resends the whole media file; one retry is enough.
			OpOpenAITranscribe: {MaxAttempts: 2, InitialBackoff: time.Second, MaxBackoff: time.Second},
			// Staging already wrote the bytes, so a publish is worth a few cheap tries.
			OpNATSPublish: {MaxAttempts: 4, InitialBackoff: 50 * time.Millisecond, MaxBackoff: 500 * time.Millisecond},
		},

		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

// WithBudget returns a copy of c with the call budget of operation set.
func (c Config) WithBudget(operation string, budget time.Duration) Config {
	budgets := make(map[string]time.Duration, len(c.Budgets)+1)
	for op, b := range c.Budgets {
		budgets[op] = b
	}
	budgets[operation] = budget
	c.Budgets = budgets
	return c
}

// retryFor resolves the effective policy of operation: global settings,
// then the operation override, then the attempt cap implied by its budget.
func (c Config) retryFor(operation string) RetryPolicy {
	p := RetryPolicy{
		MaxAttempts:    c.RetryMaxAttempts,
		InitialBackoff: c.RetryInitialBackoff,
		MaxBackoff:     c.RetryMaxBackoff,
	}
	if o, ok := c.Operations[operation]; ok {
		if o.MaxAttempts > 0 {
			p.MaxAttempts = o.MaxAttempts
		}
		if o.InitialBackoff > 0 {
			p.InitialBackoff = o.InitialBackoff
		}
		if o.MaxBackoff > 0 {
			p.MaxBackoff = o.MaxBackoff
		}
	}
	if p.MaxBackoff < p.InitialBackoff {
		p.MaxBackoff = p.InitialBackoff
	}
	if budget := c.Budgets[operation]; budget > 0 {
		p.MaxAttempts = p.attemptsWithin(budget/2, c.RetryMultiplier)
	}
	return p
}

// attemptsWithin counts the attempts whose cumulative backoff fits in
// sleepBudget. The first attempt is always allowed.
func (p RetryPolicy) attemptsWithin(sleepBudget time.Duration, multiplier float64) int {
	attempts := 1
	backoff := p.InitialBackoff
	var slept time.Duration
	for attempts < p.MaxAttempts {
		wait := min(backoff, p.MaxBackoff)
		if slept+wait > sleepBudget {
			break
		}
		slept += wait
		attempts++
		backoff = min(time.Duration(float64(backoff)*multiplier), p.MaxBackoff)
	}
	return attempts
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.RetryMaxAttempts <= 0 {
		out.RetryMaxAttempts = def.RetryMaxAttempts
	}
	if out.RetryInitialBackoff <= 0 {
		out.RetryInitialBackoff = def.RetryInitialBackoff
	}
	if out.RetryMaxBackoff <= 0 {
		out.RetryMaxBackoff = def.RetryMaxBackoff
	}
	if out.RetryMaxBackoff < out.RetryInitialBackoff {
		out.RetryMaxBackoff = out.RetryInitialBackoff
	}
	if out.RetryMultiplier < 1.0 {
		out.RetryMultiplier = def.RetryMultiplier
	}

	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = def.BreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	if out.BreakerHalfOpenMaxCalls == 0 {
		out.BreakerHalfOpenMaxCalls = def.BreakerHalfOpenMaxCalls
	}

	return out
}
