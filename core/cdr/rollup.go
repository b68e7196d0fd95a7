package cdr

import "github.com/chargenet/roaming/core/model"

// severity orders outcome kinds for deterministic tie-breaking: problems
// before neutral kinds before successes.
var severity = []model.CDROutcomeKind{
	model.CDRError,
	model.CDRUnknownSession,
	model.CDRFiltered,
	model.CDREnqueued,
	model.CDRForwarded,
}

// rollup derives the aggregate status of a routing pass: the most frequent
// per-record outcome kind. When the top frequency is shared between a
// success kind (forwarded or enqueued) and at least one other kind, the
// success kinds are excluded from the tie-break set so that a problem is
// surfaced rather than masked by an equally frequent success.
func rollup(outcomes []model.CDROutcome) model.CDROutcomeKind {
	if len(outcomes) == 0 {
		return model.CDRForwarded
	}
	counts := make(map[model.CDROutcomeKind]int)
	for _, o := range outcomes {
		counts[o.Kind]++
	}
	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	tied := make(map[model.CDROutcomeKind]bool)
	for k, n := range counts {
		if n == max {
			tied[k] = true
		}
	}
	if len(tied) > 1 && (tied[model.CDRForwarded] || tied[model.CDREnqueued]) {
		reduced := make(map[model.CDROutcomeKind]bool, len(tied))
		for k := range tied {
			if k != model.CDRForwarded && k != model.CDREnqueued {
				reduced[k] = true
			}
		}
		if len(reduced) > 0 {
			tied = reduced
		}
	}
	for _, k := range severity {
		if tied[k] {
			return k
		}
	}
	return model.CDRError
}
