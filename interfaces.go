package dash

import (
	"context"

	"github.com/jd3nn1s/dash/dashcan"
	"github.com/jd3nn1s/dash/telemetry"
	"github.com/jd3nn1s/dash/victron"
)

type CANBus interface {
	Close() error
	Start(context.Context, dashcan.FrameFn) error
}

// Scanner delivers radio advertisements until the context is cancelled or
// the adapter fails.
type Scanner interface {
	Close() error
	Scan(context.Context, func(victron.Advertisement)) error
}

type Forwarder interface {
	Forward(snap *telemetry.Snapshot) error
}

// presenter is implemented by canvases that buffer drawing.
type presenter interface {
	Present() error
}
