package chart

// PointerFunc converts a host pointer coordinate into surface X. The hosting
// view supplies it, since only the host knows how its viewport is scaled.
type PointerFunc func(clientX float64) float64

// Tracker keeps the probe for one view. It is not safe for concurrent use.
type Tracker struct {
	chart   *Chart
	current *ProbeResult
}

func NewTracker(c *Chart) *Tracker {
	return &Tracker{chart: c}
}

// Move probes at a surface X. A miss clears the previous result.
func (t *Tracker) Move(surfaceX float64) (ProbeResult, bool) {
	if t.chart == nil {
		t.current = nil
		return ProbeResult{}, false
	}
	result, ok := t.chart.Probe(surfaceX)
	if !ok {
		t.current = nil
		return ProbeResult{}, false
	}
	t.current = &result
	return result, true
}

// MoveClient converts a host coordinate with toSurface and probes there.
func (t *Tracker) MoveClient(clientX float64, toSurface PointerFunc) (ProbeResult, bool) {
	return t.Move(toSurface(clientX))
}

// Leave clears the probe when the pointer exits the surface.
func (t *Tracker) Leave() {
	t.current = nil
}

func (t *Tracker) Current() (ProbeResult, bool) {
	if t.current == nil {
		return ProbeResult{}, false
	}
	return *t.current, true
}

// Reset swaps in a freshly built chart, e.g. after a timeframe change.
func (t *Tracker) Reset(c *Chart) {
	t.chart = c
	t.current = nil
}

func (t *Tracker) Chart() *Chart {
	return t.chart
}
