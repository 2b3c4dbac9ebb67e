package wmr89

// rainAccumulator tracks the last cumulative rain total seen by one decoder
// so that incremental rainfall can be derived from consecutive rain packets.
// Each decoder owns its own accumulator; sharing one between stations would
// cross-contaminate their deltas.
type rainAccumulator struct {
	lastTotal *float64
}

// delta returns the rainfall since the previous rain packet, given the
// current cumulative total in cm.  The first reading after startup has no
// baseline, and a total lower than the baseline means the console's counter
// was reset, so both cases yield no value rather than a negative amount.
// The stored total is always advanced to the current one.
func (a *rainAccumulator) delta(total float64) *float64 {
	prev := a.lastTotal
	a.lastTotal = &total

	if prev == nil || total < *prev {
		return nil
	}
	d := total - *prev
	return &d
}
