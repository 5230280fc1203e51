package forwarder

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jd3nn1s/dash/telemetry"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const udpInterval = 100 * time.Millisecond

type UDPConfig struct {
	Server string `toml:"server" yaml:"server"`
	Port   int    `toml:"port" yaml:"port"`
}

// Enabled reports whether a destination is configured.
func (c UDPConfig) Enabled() bool {
	return c.Server != "" && c.Port > 0
}

// UDPForwarder sends at most one telemetry packet per interval to a
// remote listener.
type UDPForwarder struct {
	Config *UDPConfig

	conn    net.Conn
	fwdChan chan Telemetry
}

func NewUDPForwarder(config UDPConfig) (*UDPForwarder, error) {
	udp := &UDPForwarder{
		Config:  &config,
		fwdChan: make(chan Telemetry, 1),
	}
	if err := udp.connect(); err != nil {
		return nil, err
	}
	return udp, nil
}

// NewUDPForwarderFromReader reads a TOML UDPConfig from configReader.
func NewUDPForwarderFromReader(configReader io.Reader) (*UDPForwarder, error) {
	config := UDPConfig{}
	if _, err := toml.NewDecoder(configReader).Decode(&config); err != nil {
		return nil, errors.Wrapf(err, "unable to load udp forwarder configuration")
	}
	return NewUDPForwarder(config)
}

func (udp *UDPForwarder) Close() error {
	return udp.conn.Close()
}

func (udp *UDPForwarder) Name() string {
	return "udp"
}

func (udp *UDPForwarder) Forward(snap *telemetry.Snapshot) error {
	select {
	// flatten now, the snapshot is reused by the caller
	case udp.fwdChan <- NewTelemetry(snap):
	default:
		// if channel is full, skip
	}
	return nil
}

func (udp *UDPForwarder) Start(ctx context.Context) error {
	limiter := time.NewTicker(udpInterval)
	defer limiter.Stop()
	for {
		select {
		case <-limiter.C:
		case <-ctx.Done():
			return ctx.Err()
		}
		select {
		case t := <-udp.fwdChan:
			if err := udp.forward(&t); err != nil {
				log.WithField("err", err).Error("unable to forward telemetry to server")
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (udp *UDPForwarder) forward(telem *Telemetry) error {
	buf := bytes.NewBuffer(make([]byte, 0, maxTelemetrySize))
	hdr := Header{
		Type:  TypeTelemetry,
		Count: uint8(telemetry.ChannelCount),
	}
	if err := binary.Write(buf, binary.LittleEndian, &hdr); err != nil {
		return errors.Wrap(err, "unable to write udp packet header")
	}
	if err := binary.Write(buf, binary.LittleEndian, telem); err != nil {
		return errors.Wrap(err, "unable to write telemetry udp packet")
	}
	_, err := udp.conn.Write(buf.Bytes())
	return errors.Wrap(err, "unable to send udp packet")
}

func (udp *UDPForwarder) connect() error {
	writeBufSize := maxTelemetrySize * 2

	conn, err := net.Dial("udp", fmt.Sprintf("%s:%d",
		udp.Config.Server,
		udp.Config.Port))
	if err != nil {
		return errors.Wrap(err, "unable to dial udp server")
	}
	udpConn := conn.(*net.UDPConn)
	if err = udpConn.SetWriteBuffer(writeBufSize); err != nil {
		return errors.Wrapf(err, "unable to set OS write buffer to %v", writeBufSize)
	}

	udp.conn = conn
	return nil
}
