package audit

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/pkg/errors"

	"github.com/Manav02012002/hepconduit/pkg/canonicaljson"
)

// LossHash returns the SHA-256 hex digest of plan and the losses counter
// observed actually tallied, over their canonical JSON encoding, so two
// conversions with identical loss profiles hash identically regardless of
// map iteration order.
func LossHash(plan LossPlan, counter *LossCounter) (string, error) {
	payload := map[string]any{
		"plan": map[string]any{
			"input_format":            plan.InputFormat,
			"output_format":           plan.OutputFormat,
			"dropped_particle_fields": plan.DroppedParticleFields,
			"dropped_event_fields":    plan.DroppedEventFields,
			"dropped_run_fields":      plan.DroppedRunFields,
		},
		"observed": map[string]any{
			"dropped_fields":        counter.DroppedFields,
			"dropped_weights":       counter.DroppedWeights,
			"dropped_runinfo_keys":  counter.DroppedRunInfoKeys,
			"loss_examples":         counter.LossExamples,
		},
	}
	b, err := canonicaljson.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "audit: loss hash")
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
