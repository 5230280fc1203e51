package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jd3nn1s/dash"
	"github.com/jd3nn1s/dash/config"
	"github.com/jd3nn1s/dash/display"
	"github.com/jd3nn1s/dash/forwarder"
	"github.com/jd3nn1s/dash/render"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath   = flag.String("config", "dash.toml", "path to the configuration file (.toml or .yaml)")
	logLevel     = flag.String("loglevel", "", "log level, overrides the configuration")
	testMode     = flag.Bool("testmode", false, "generate test data")
	fbDevice     = flag.String("fb", "", "framebuffer device to draw on, e.g. /dev/fb1")
	snapshotPath = flag.String("snapshot", "", "write the screen as PNG after -snapshot-after and exit")
	snapshotWait = flag.Duration("snapshot-after", 2*time.Second, "how long to run before writing the snapshot")
)

func setupLogging(cfg config.Logs) {
	level := cfg.Level
	if *logLevel != "" {
		level = *logLevel
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("err", err).Warn("invalid log level, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)

	if cfg.File == "" {
		return
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxAge:     cfg.MaxAgeDays,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
}

func addForwarders(ctx context.Context, d *dash.Dash, cfg config.Forward) {
	if cfg.UDP.Enabled() {
		fwder, err := forwarder.NewUDPForwarder(cfg.UDP)
		if err != nil {
			log.WithField("err", err).Error("unable to start udp forwarder")
		} else {
			go fwder.Start(ctx)
			d.AddForwarder(fwder)
		}
	}
	if cfg.Redis.Enabled() {
		fwder := forwarder.NewRedisForwarder(cfg.Redis)
		go fwder.Start(ctx)
		d.AddForwarder(fwder)
	}
}

func main() {
	flag.Parse()

	cfg := config.LoadOrDefault(*configPath)
	setupLogging(cfg.Logs)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fb := display.NewFramebuffer(render.ScreenW, render.ScreenH)
	if *fbDevice != "" {
		dev, err := display.OpenDevice(*fbDevice)
		if err != nil {
			log.Fatal("unable to open display: ", err)
		}
		defer dev.Close()
		fb.SetFlusher(dev)
	}

	d, err := dash.NewDash(cfg, display.NewCanvas(fb))
	if err != nil {
		log.Fatal("unable to create dash: ", err)
	}
	d.SetScanner(connectScanner)
	d.SetTestMode(*testMode)
	addForwarders(ctx, d, cfg.Forward)
	d.Start(ctx)

	if *snapshotPath != "" {
		var timeout context.CancelFunc
		ctx, timeout = context.WithTimeout(ctx, *snapshotWait)
		defer timeout()
	}

	if err := d.Run(ctx); err != nil && err != context.DeadlineExceeded {
		log.Infof("stopping: %v", err)
	}

	if *snapshotPath != "" {
		f, err := os.Create(*snapshotPath)
		if err != nil {
			log.Fatal("unable to create snapshot: ", err)
		}
		defer f.Close()
		if err := fb.WritePNG(f); err != nil {
			log.Fatal("unable to write snapshot: ", err)
		}
		log.WithField("path", *snapshotPath).Info("snapshot written")
	}
}
