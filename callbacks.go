package opcua

import "time"

// AddRepeatedCallback registers cb to fire every interval, starting one
// interval from now, driven from inside Run/RunIterate (spec §6
// `add_repeated_callback`, §4.5). interval must be at least 5ms.
func (c *Client) AddRepeatedCallback(interval time.Duration, cb func()) (uint64, error) {
	return c.timers.addRepeated(time.Now(), interval, cb)
}

// ChangeRepeatedCallbackInterval updates a registered callback's period,
// effective on its next scheduled fire (spec §6
// `change_repeated_callback_interval`).
func (c *Client) ChangeRepeatedCallbackInterval(id uint64, interval time.Duration) error {
	return c.timers.changeInterval(id, interval)
}

// RemoveRepeatedCallback unregisters id; safe to call from within the
// callback itself (spec §6 `remove_repeated_callback`, §4.5
// self-removal).
func (c *Client) RemoveRepeatedCallback(id uint64) {
	c.timers.remove(id)
}
