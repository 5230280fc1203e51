package dash

import (
	"context"

	"github.com/jd3nn1s/dash/dashcan"
	"github.com/jd3nn1s/dash/telemetry"
	"github.com/jd3nn1s/dash/victron"
)

type sensorStub struct {
	startChan chan struct{}
	errChan   chan error
	fnChan    chan func()
	closed    int
}

type canBusStub struct {
	sensorStub
	fn dashcan.FrameFn
}

type scannerStub struct {
	sensorStub
	fn func(victron.Advertisement)
}

func createSensorStub() *sensorStub {
	ret := sensorStub{
		startChan: make(chan struct{}, 1),
		errChan:   make(chan error),
		fnChan:    make(chan func()),
	}
	return &ret
}

func (s *sensorStub) Close() error {
	s.closed++
	return nil
}

func (s *sensorStub) start(ctx context.Context) error {
	select {
	case s.startChan <- struct{}{}:
	default:
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-s.errChan:
			return err
		case fn := <-s.fnChan:
			fn()
		}
	}
}

func createCANBusStub() *canBusStub {
	return &canBusStub{
		sensorStub: *createSensorStub(),
	}
}

func (c *canBusStub) Start(ctx context.Context, fn dashcan.FrameFn) error {
	c.fn = fn
	return c.sensorStub.start(ctx)
}

func createScannerStub() *scannerStub {
	return &scannerStub{
		sensorStub: *createSensorStub(),
	}
}

func (s *scannerStub) Scan(ctx context.Context, fn func(victron.Advertisement)) error {
	s.fn = fn
	return s.sensorStub.start(ctx)
}

type forwarderStub struct {
	count     int
	telemetry telemetry.Snapshot
}

func (fwd *forwarderStub) Forward(snap *telemetry.Snapshot) error {
	fwd.count++
	fwd.telemetry = *snap
	return nil
}
