package consensus

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRemovalThresholds sets the averaged-probability ceilings below which a
// candidate becomes a removal candidate.
func WithRemovalThresholds(tickersMax, haulersMax float64) Option {
	return func(e *Engine) {
		if tickersMax > 0 {
			e.removalTickersMax = tickersMax
		}
		if haulersMax > 0 {
			e.removalHaulersMax = haulersMax
		}
	}
}

// WithHighVoteThreshold sets the per-expert probability at which a Tickers or
// Haulers rating counts as a high vote.
func WithHighVoteThreshold(threshold float64) Option {
	return func(e *Engine) {
		if threshold > 0 && threshold <= 1 {
			e.highVoteThreshold = threshold
		}
	}
}

// WithMinAgreement sets how many distinct experts must cast a high vote
// before a candidate is locked.
func WithMinAgreement(count int) Option {
	return func(e *Engine) {
		if count > 0 {
			e.minAgreement = count
		}
	}
}
