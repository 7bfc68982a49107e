package ai

// UsageSnapshot is the terminal accounting state of one generation call:
// token counts, finish reason, and the model that served the request.
// Usage is nil when the provider never reported token counts.
type UsageSnapshot struct {
	Usage        *Usage
	FinishReason FinishReason
	Model        string
}

// UsageAccumulator folds usage information from streamed deltas (or a single
// blocking result) into a terminal snapshot. Readers see "unset" values until
// Finalize is called, so a half-consumed stream never exposes partial or
// inconsistent totals. The zero value is ready to use.
//
// An accumulator belongs to exactly one call and is not safe for concurrent
// use; the TextStream that owns it drives it from the consuming goroutine.
type UsageAccumulator struct {
	usage  *Usage
	finish FinishReason
	model  string
	done   bool
}

// Record folds a single delta into the running state. Usage typically arrives
// in at most one frame per stream; a later usage frame replaces an earlier
// one rather than summing, since providers report cumulative totals.
func (a *UsageAccumulator) Record(delta Delta) {
	if delta.Model != "" && a.model == "" {
		a.model = delta.Model
	}

	switch delta.Type {
	case DeltaUsage:
		if delta.Usage != nil {
			normalized := delta.Usage.Normalize()
			a.usage = &normalized
		}
	case DeltaDone:
		if delta.FinishReason != "" {
			a.finish = delta.FinishReason
		}
	case DeltaText:
		// Text deltas carry no accounting.
	}
}

// RecordResult captures accounting from a blocking response and finalizes
// immediately: the blocking path has a single terminal state.
func (a *UsageAccumulator) RecordResult(result *GenerateResult) UsageSnapshot {
	if result != nil {
		if result.Usage != nil {
			normalized := result.Usage.Normalize()
			a.usage = &normalized
		}
		a.finish = result.FinishReason
		if result.Model != "" {
			a.model = result.Model
		}
	}
	return a.Finalize()
}

// Finalize marks the accumulator terminal and returns the snapshot. Calling
// it again returns the same snapshot.
func (a *UsageAccumulator) Finalize() UsageSnapshot {
	a.done = true
	return UsageSnapshot{Usage: a.usage, FinishReason: a.finish, Model: a.model}
}

// Done reports whether the terminal state has been reached.
func (a *UsageAccumulator) Done() bool { return a.done }

// Usage returns the accumulated token counts, or nil before finalization and
// when the provider never reported usage.
func (a *UsageAccumulator) Usage() *Usage {
	if !a.done {
		return nil
	}
	return a.usage
}

// FinishReason returns the terminal finish reason, or the empty string before
// finalization.
func (a *UsageAccumulator) FinishReason() FinishReason {
	if !a.done {
		return ""
	}
	return a.finish
}

// Model returns the model that served the call, or the empty string before
// finalization.
func (a *UsageAccumulator) Model() string {
	if !a.done {
		return ""
	}
	return a.model
}
