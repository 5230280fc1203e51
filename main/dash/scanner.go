package main

import (
	"context"

	"github.com/jd3nn1s/dash"
	"github.com/jd3nn1s/dash/victron"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"
)

type bleScanner struct {
	adapter *bluetooth.Adapter
}

func connectScanner() (dash.Scanner, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, errors.Wrap(err, "unable to enable bluetooth adapter")
	}
	return &bleScanner{adapter: adapter}, nil
}

func (s *bleScanner) Close() error {
	if err := s.adapter.StopScan(); err != nil {
		log.WithField("err", err).Debug("stop scan")
	}
	return nil
}

// Scan passes every manufacturer record carrying the Victron company id to
// fn. The record is prefixed with the little-endian company id the way it
// appears on air.
func (s *bleScanner) Scan(ctx context.Context, fn func(victron.Advertisement)) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			if err := s.adapter.StopScan(); err != nil {
				log.WithField("err", err).Warn("unable to stop bluetooth scan")
			}
		case <-done:
		}
	}()

	err := s.adapter.Scan(func(_ *bluetooth.Adapter, res bluetooth.ScanResult) {
		for _, m := range res.ManufacturerData() {
			if m.CompanyID != victron.CompanyID {
				continue
			}
			data := make([]byte, 2+len(m.Data))
			data[0] = byte(m.CompanyID)
			data[1] = byte(m.CompanyID >> 8)
			copy(data[2:], m.Data)
			fn(victron.Advertisement{
				Address: victron.NormalizeAddress(res.Address.String()),
				Data:    data,
			})
		}
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return errors.Wrap(err, "bluetooth scan failed")
	}
	return errors.New("bluetooth scan stopped")
}
