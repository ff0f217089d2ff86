package movement

import "time"

// Direct chases the target's current position every tick.
type Direct struct {
	base
}

// NewDirect creates a direct pursuit strategy.
func NewDirect(cfg Config) *Direct {
	return &Direct{base: base{cfg: cfg}}
}

// Move sets the destination to the target and optionally faces it.
func (d *Direct) Move(now time.Duration) {
	dt := d.step(now)
	if d.stopped || !d.ready() || !d.hasTarget() {
		return
	}

	dest := d.target.Position()
	d.goTo(dest)
	if d.cfg.FaceTarget {
		d.face(dest, dt)
	}
}
