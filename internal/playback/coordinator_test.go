package playback

import (
	"errors"
	"testing"
)

// fakeDevice records the call sequence for assertions.
type fakeDevice struct {
	calls   []string
	playErr error
	stopErr error
}

func (d *fakeDevice) Play(url string) error {
	d.calls = append(d.calls, "play:"+url)
	return d.playErr
}

func (d *fakeDevice) Pause() error {
	d.calls = append(d.calls, "pause")
	return nil
}

func (d *fakeDevice) Resume() error {
	d.calls = append(d.calls, "resume")
	return nil
}

func (d *fakeDevice) Stop() error {
	d.calls = append(d.calls, "stop")
	return d.stopErr
}

func (d *fakeDevice) Seek(seconds float64) error {
	d.calls = append(d.calls, "seek")
	return nil
}

// TestPlayStopsPreviousKeyFirst verifies the single-stream invariant.
func TestPlayStopsPreviousKeyFirst(t *testing.T) {
	device := &fakeDevice{}
	c := New(device)

	if err := c.Play("en", "https://cdn/en.mp3"); err != nil {
		t.Fatalf("play en: %v", err)
	}
	if err := c.Play("es", "https://cdn/es.mp3"); err != nil {
		t.Fatalf("play es: %v", err)
	}

	want := []string{"play:https://cdn/en.mp3", "stop", "play:https://cdn/es.mp3"}
	if len(device.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", device.calls, want)
	}
	for i := range want {
		if device.calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q", i, device.calls[i], want[i])
		}
	}

	if key, ok := c.NowPlaying(); !ok || key != "es" {
		t.Fatalf("now playing = %q/%v, want es", key, ok)
	}
}

// TestReplaySameKeyDoesNotStop verifies restarting the same key skips the
// intermediate stop.
func TestReplaySameKeyDoesNotStop(t *testing.T) {
	device := &fakeDevice{}
	c := New(device)

	_ = c.Play("en", "https://cdn/en.mp3")
	_ = c.Play("en", "https://cdn/en.mp3")

	for _, call := range device.calls {
		if call == "stop" {
			t.Fatalf("unexpected stop in %v", device.calls)
		}
	}
}

// TestStopClearsCurrent verifies stop semantics.
func TestStopClearsCurrent(t *testing.T) {
	device := &fakeDevice{}
	c := New(device)

	_ = c.Play("hi", "https://cdn/hi.mp3")
	if err := c.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, ok := c.NowPlaying(); ok {
		t.Fatal("current key not cleared by stop")
	}

	// Stopping when idle is a no-op against the device.
	calls := len(device.calls)
	if err := c.Stop(); err != nil {
		t.Fatalf("idle stop: %v", err)
	}
	if len(device.calls) != calls {
		t.Fatal("idle stop reached the device")
	}
}

// TestPlaybackEndedClearsCurrent verifies the external end event.
func TestPlaybackEndedClearsCurrent(t *testing.T) {
	c := New(&fakeDevice{})
	_ = c.Play("en", "https://cdn/en.mp3")

	c.PlaybackEnded()
	if _, ok := c.NowPlaying(); ok {
		t.Fatal("current key survives end-of-playback")
	}
}

// TestPlayErrorLeavesNothingPlaying verifies device failures do not record
// a phantom active stream.
func TestPlayErrorLeavesNothingPlaying(t *testing.T) {
	device := &fakeDevice{playErr: errors.New("device busy")}
	c := New(device)

	if err := c.Play("en", "https://cdn/en.mp3"); err == nil {
		t.Fatal("expected device error")
	}
	if _, ok := c.NowPlaying(); ok {
		t.Fatal("failed play marked as active")
	}
}

// TestPauseResumeSeekWhenIdleAreNoOps verifies idle guards.
func TestPauseResumeSeekWhenIdleAreNoOps(t *testing.T) {
	device := &fakeDevice{}
	c := New(device)

	if err := c.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := c.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if err := c.Seek(3); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if len(device.calls) != 0 {
		t.Fatalf("idle controls reached device: %v", device.calls)
	}
}
