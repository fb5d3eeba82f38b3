package runtime

// PendingTimers reports how many timers the active step holds.
func (c *Controller) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sched.pending()
}
