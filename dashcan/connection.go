// Package dashcan decodes the vehicle bus frames the cluster displays.
package dashcan

import (
	"context"

	"github.com/brutella/can"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// FrameFn receives every frame read from the bus. It runs on the bus
// goroutine.
type FrameFn func(frame can.Frame)

type CANBus interface {
	SubscribeFunc(can.HandlerFunc)
	ConnectAndPublish() error
	Disconnect() error
}

type Connection struct {
	bus CANBus
	fn  FrameFn
}

// to allow testing
var newBus = func(portName string) (CANBus, error) {
	return can.NewBusForInterfaceWithName(portName)
}

func Connect(portName string) (*Connection, error) {
	bus, err := newBus(portName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open can interface %s", portName)
	}

	c := &Connection{
		bus: bus,
	}
	return c, nil
}

// Start subscribes fn and blocks reading the bus until the context is
// cancelled or the bus fails.
func (c *Connection) Start(ctx context.Context, fn FrameFn) error {
	if c.bus == nil {
		return errors.New("can bus not connected")
	}
	c.fn = fn
	c.bus.SubscribeFunc(c.handleFrame)
	log.Info("CAN bus opened and subscribed")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			log.Infof("stopping can bus: %v", ctx.Err())
			if err := c.bus.Disconnect(); err != nil {
				log.WithField("err", err).Warn("unable to disconnect canbus after context")
			}
		case <-done:
		}
	}()

	return c.bus.ConnectAndPublish()
}

func (c *Connection) Close() error {
	if c.bus == nil {
		return errors.New("can bus not connected")
	}
	return c.bus.Disconnect()
}

func (c *Connection) handleFrame(frame can.Frame) {
	log.WithField("canID", frame.ID).
		WithField("length", frame.Length).
		Debug("received canbus frame")

	if c.fn == nil {
		log.WithField("canID", frame.ID).Debug("no frame callback registered")
		return
	}
	c.fn(frame)
}
