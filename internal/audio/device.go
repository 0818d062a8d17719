package audio

import (
	"fmt"
	"io"

	"github.com/gen2brain/malgo"
)

// captureDevice pairs a malgo device with its context so both are released
// together when the session ends.
type captureDevice struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
}

// openCaptureDevice opens the default microphone at the requested rate in
// 16-bit signed PCM and starts delivering buffers to onData.
func openCaptureDevice(sampleRate, channels uint32, onData func(pcm []byte)) (io.Closer, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing audio context: %w", err)
	}

	deviceCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceCfg.Capture.Format = malgo.FormatS16
	deviceCfg.Capture.Channels = channels
	deviceCfg.SampleRate = sampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pSample []byte, frameCount uint32) {
			onData(pSample)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceCfg, callbacks)
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("initializing capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("starting capture device: %w", err)
	}

	return &captureDevice{ctx: ctx, device: device}, nil
}

// Close stops capture and releases the device and its context.
func (d *captureDevice) Close() error {
	if d.device != nil {
		d.device.Uninit()
		d.device = nil
	}
	if d.ctx != nil {
		err := d.ctx.Uninit()
		d.ctx.Free()
		d.ctx = nil
		if err != nil {
			return fmt.Errorf("uninitializing audio context: %w", err)
		}
	}
	return nil
}
