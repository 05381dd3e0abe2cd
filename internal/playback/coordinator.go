// Package playback keeps at most one narration stream active at a time.
package playback

import "sync"

// Device is the external audio player driven by the coordinator.
type Device interface {
	Play(url string) error
	Pause() error
	Resume() error
	Stop() error
	Seek(seconds float64) error
}

// Coordinator maps "play language X" onto the device and tracks which key
// is currently sounding.
type Coordinator struct {
	mu      sync.Mutex
	device  Device
	current string
	active  bool
}

// New creates a coordinator over a playback device.
func New(device Device) *Coordinator {
	return &Coordinator{device: device}
}

// Play starts the given key's audio URL. A different key already playing is
// stopped first; only one stream is ever active.
func (c *Coordinator) Play(key, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active && c.current != key {
		if err := c.device.Stop(); err != nil {
			return err
		}
		c.active = false
		c.current = ""
	}

	if err := c.device.Play(url); err != nil {
		return err
	}
	c.current = key
	c.active = true
	return nil
}

// Pause suspends the active stream; a no-op when nothing plays.
func (c *Coordinator) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return nil
	}
	return c.device.Pause()
}

// Resume continues a paused stream; a no-op when nothing plays.
func (c *Coordinator) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return nil
	}
	return c.device.Resume()
}

// Seek repositions the active stream; a no-op when nothing plays.
func (c *Coordinator) Seek(seconds float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return nil
	}
	return c.device.Seek(seconds)
}

// Stop halts playback and clears the current key.
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return nil
	}
	err := c.device.Stop()
	c.current = ""
	c.active = false
	return err
}

// PlaybackEnded handles the device-reported end-of-stream event.
func (c *Coordinator) PlaybackEnded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = ""
	c.active = false
}

// NowPlaying returns the active key, if any.
func (c *Coordinator) NowPlaying() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.active
}
