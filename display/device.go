package display

import (
	"os"

	"github.com/pkg/errors"
)

// Device copies every frame to a framebuffer device such as /dev/fb1. The
// device must be configured for 16 bit RGB565 at the panel size.
type Device struct {
	f *os.File
}

func OpenDevice(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open framebuffer %s", path)
	}
	return &Device{f: f}, nil
}

func (d *Device) Flush(buf []byte, width, height int16) error {
	if want := int(width) * int(height) * 2; len(buf) != want {
		return errors.Errorf("framebuffer is %d bytes, want %d", len(buf), want)
	}
	_, err := d.f.WriteAt(buf, 0)
	return err
}

func (d *Device) Close() error {
	return d.f.Close()
}
