// internal/xp/detector.go
package xp

import "studyflow/internal/model"

// Detector watches resolved elo transitions and raises a one-shot upgrade
// signal. The first observation only records the baseline; downgrades update
// the baseline silently. Not safe for concurrent use on its own; the engine
// calls it under its lock.
type Detector struct {
	baselined bool
	current   model.Elo
	pending   *model.EloUpgradeResponse
}

// Observe feeds the currently resolved elo into the detector.
func (d *Detector) Observe(e model.Elo) {
	if !d.baselined {
		d.baselined = true
		d.current = e
		return
	}
	if e.Rank == d.current.Rank {
		return
	}
	if e.Rank > d.current.Rank {
		if d.pending == nil {
			// From is the elo held at the first un-consumed crossing.
			d.pending = &model.EloUpgradeResponse{From: d.current, To: e}
		} else {
			d.pending.To = e
		}
	}
	d.current = e
}

// Consume returns the pending upgrade signal and clears it.
func (d *Detector) Consume() *model.EloUpgradeResponse {
	p := d.pending
	d.pending = nil
	return p
}
