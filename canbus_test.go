package dash

import (
	"context"
	"sync"
	"testing"

	"github.com/brutella/can"
	"github.com/jd3nn1s/dash/dashcan"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCANBus(t *testing.T) {
	canBusChan := make(chan can.Frame, 1)

	origCanBusConnect := canBusConnect
	defer func() {
		canBusConnect = origCanBusConnect
	}()

	stub := createCANBusStub()
	var portName string
	canBusConnect = func(p string) (CANBus, error) {
		portName = p
		return stub, nil
	}

	canBusRetryable := &canBus{
		portName: "vcan0",
		sendChan: canBusChan,
	}

	// close before opening
	assert.NoError(t, canBusRetryable.Close())
	assert.NoError(t, canBusRetryable.Open())
	assert.Equal(t, "vcan0", portName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		_ = canBusRetryable.Start(ctx)
		wg.Done()
	}()
	<-stub.startChan

	speed := testFrame(dashcan.FrameSpeed, 0, 0x0C, 0x80)
	stub.fnChan <- func() {
		stub.fn(speed)
	}
	assert.Equal(t, speed, <-canBusChan)

	// a full buffer drops instead of blocking the bus
	sent := make(chan struct{})
	stub.fnChan <- func() {
		stub.fn(testFrame(dashcan.FrameBattV, 130))
		stub.fn(testFrame(dashcan.FrameBattV, 131))
		close(sent)
	}
	<-sent
	assert.Equal(t, byte(130), (<-canBusChan).Data[0])
	assert.Len(t, canBusChan, 0)

	cancel()
	wg.Wait()
	assert.NoError(t, canBusRetryable.Close())
	assert.Equal(t, 1, stub.closed)
}

func TestCANBusConnectError(t *testing.T) {
	origCanBusConnect := canBusConnect
	defer func() {
		canBusConnect = origCanBusConnect
	}()
	canBusConnect = func(p string) (CANBus, error) {
		return nil, errors.New("no such device")
	}

	bus := &canBus{portName: "can9"}
	require.Error(t, bus.Open())
	assert.NoError(t, bus.Close())
	assert.Equal(t, "canbus", bus.Name())
}
