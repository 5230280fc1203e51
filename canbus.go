package dash

import (
	"context"

	"github.com/brutella/can"
	"github.com/jd3nn1s/dash/dashcan"
	log "github.com/sirupsen/logrus"
)

type canBus struct {
	c        CANBus
	portName string
	sendChan chan<- can.Frame
}

func (bus *canBus) Open() error {
	c, err := canBusConnect(bus.portName)
	bus.c = c
	return err
}

func (bus *canBus) Close() error {
	if bus.c == nil {
		return nil
	}
	return bus.c.Close()
}

func (bus *canBus) Start(ctx context.Context) error {
	return bus.c.Start(ctx, bus.send)
}

// send runs on the bus goroutine. Frames are dropped while the render loop
// is behind.
func (bus *canBus) send(frame can.Frame) {
	select {
	case bus.sendChan <- frame:
	default:
		log.WithField("canID", frame.ID).Debug("frame buffer full, dropping frame")
	}
}

func (bus *canBus) Name() string {
	return "canbus"
}

var canBusConnect = func(p string) (CANBus, error) {
	c, err := dashcan.Connect(p)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func runCAN(ctx context.Context, portName string, sendChan chan<- can.Frame) {
	err := retry(ctx, &canBus{
		portName: portName,
		sendChan: sendChan,
	})
	if err != nil {
		log.Errorf("canbus done: %v", err)
	}
}
