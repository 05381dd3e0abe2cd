package bootstrap

import (
	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// frontendDevice forwards playback commands to the frontend's audio element.
type frontendDevice struct {
	app *App
}

func (d *frontendDevice) Play(url string) error {
	return d.emit("play", map[string]interface{}{"url": url})
}

func (d *frontendDevice) Pause() error {
	return d.emit("pause", nil)
}

func (d *frontendDevice) Resume() error {
	return d.emit("resume", nil)
}

func (d *frontendDevice) Stop() error {
	return d.emit("stop", nil)
}

func (d *frontendDevice) Seek(seconds float64) error {
	return d.emit("seek", map[string]interface{}{"seconds": seconds})
}

func (d *frontendDevice) emit(action string, payload map[string]interface{}) error {
	ctx, err := d.app.runtimeContext()
	if err != nil {
		return err
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["action"] = action
	wailsruntime.EventsEmit(ctx, "playback:command", payload)
	return nil
}
