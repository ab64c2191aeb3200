package score

import "fmt"

// Kind identifies a client-attributable rejection. The string values are the
// wire-level error types returned to the client.
type Kind string

const (
	KindVersionMismatch      Kind = "version_mismatch"
	KindDuplicateSubmission  Kind = "duplicate_submission"
	KindUniquenessViolation  Kind = "uniqueness_violation"
	KindItemCountMismatch    Kind = "item_count_mismatch"
	KindItemValidationFailed Kind = "item_validation_failed"
	KindInvalidSeed          Kind = "invalid_seed"
)

// Rejection is a typed refusal of a submission. It carries enough detail to
// debug a legitimate client bug (the offending hash or item index) but never
// the pack's curve or weight internals — the pipeline must not become an
// oracle a cheater can probe.
type Rejection struct {
	Kind  Kind
	Hash  string // set for uniqueness violations
	Index int    // set for per-item validation failures
}

func (r *Rejection) Error() string {
	switch r.Kind {
	case KindVersionMismatch:
		return "content version mismatch"
	case KindDuplicateSubmission:
		return "score already submitted"
	case KindUniquenessViolation:
		return fmt.Sprintf("one-of-a-kind item %s already exists", r.Hash)
	case KindItemCountMismatch:
		return "item count mismatch"
	case KindItemValidationFailed:
		return fmt.Sprintf("item validation failed at index %d", r.Index)
	case KindInvalidSeed:
		return "malformed seed"
	default:
		return string(r.Kind)
	}
}

func reject(kind Kind) *Rejection {
	return &Rejection{Kind: kind}
}
