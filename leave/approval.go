package leave

// CheckDecision reports whether an administrator may still approve or
// reject rec. Decisions are final; only cancellation can follow one.
func CheckDecision(rec Record) error {
	if !rec.IsActive() {
		return ErrAlreadyCancelled
	}
	if rec.Approval != Pending {
		return ErrAlreadyDecided
	}
	return nil
}
