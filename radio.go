package dash

import (
	"context"

	"github.com/jd3nn1s/dash/telemetry"
	"github.com/jd3nn1s/dash/victron"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ScannerConnect opens the radio adapter.
type ScannerConnect func() (Scanner, error)

var errNoScanner = errors.New("no radio scanner configured")

type radio struct {
	s        Scanner
	connect  ScannerConnect
	decode   func(victron.Advertisement) (telemetry.Update, bool)
	sendChan chan<- telemetry.Update
}

func (r *radio) Open() error {
	if r.connect == nil {
		return errNoScanner
	}
	s, err := r.connect()
	r.s = s
	return err
}

func (r *radio) Close() error {
	if r.s == nil {
		return nil
	}
	return r.s.Close()
}

func (r *radio) Start(ctx context.Context) error {
	return r.s.Scan(ctx, r.handle)
}

func (r *radio) Name() string {
	return "radio"
}

// handle runs on the scanner goroutine.
func (r *radio) handle(adv victron.Advertisement) {
	u, ok := r.decode(adv)
	if !ok {
		return
	}
	select {
	case r.sendChan <- u:
	default:
		log.WithField("group", u.Group).Debug("update buffer full, dropping radio update")
	}
}

func runRadio(ctx context.Context, r *radio) {
	if err := retry(ctx, r); err != nil {
		log.Errorf("radio done: %v", err)
	}
}
