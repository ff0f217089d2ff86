package ai

// Ticker is anything the TickManager drives once per simulation tick.
type Ticker interface {
	// Start is called on registration.
	Start()

	// Stop is called on unregistration.
	Stop()

	// Tick performs one simulation step.
	Tick()
}

// Updater advances continuous state (navigation, projectiles) by dt seconds.
type Updater interface {
	Update(dt float64)
}

// UpdaterFunc adapts a function to Updater.
type UpdaterFunc func(dt float64)

// Update calls f(dt).
func (f UpdaterFunc) Update(dt float64) {
	f(dt)
}
