package logic

// the simulation clock as seen by the routers
type Clock interface {
	Now() float64
}

// SimClock is advanced by the event driver; time never goes backwards.
type SimClock struct {
	now float64
}

func NewSimClock(start float64) *SimClock {
	return &SimClock{now: start}
}

func (c *SimClock) Now() float64 {
	return c.now
}

// moves the clock to t; returns false (and does nothing) if t is in the past
func (c *SimClock) Advance(t float64) bool {
	if t < c.now {
		return false
	}
	c.now = t
	return true
}
