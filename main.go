package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/llehouerou/rpconsole/internal/api"
	"github.com/llehouerou/rpconsole/internal/app"
	"github.com/llehouerou/rpconsole/internal/bootstrap"
	"github.com/llehouerou/rpconsole/internal/config"
	"github.com/llehouerou/rpconsole/internal/errmsg"
	"github.com/llehouerou/rpconsole/internal/logging"
	"github.com/llehouerou/rpconsole/internal/metrics"
	"github.com/llehouerou/rpconsole/internal/notify"
	"github.com/llehouerou/rpconsole/internal/player"
	"github.com/llehouerou/rpconsole/internal/state"
	"github.com/llehouerou/rpconsole/internal/stderr"
)

const shutdownTimeout = 2 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a config file (replaces the default locations)")
	stationID := flag.String("station", "", "station id (overrides station_id)")
	pageURL := flag.String("page", "", "console page URL carrying launch overrides (overrides page_url)")
	flag.Parse()

	if err := run(*configPath, *stationID, *pageURL); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, stationID, pageURL string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}
	if s := strings.TrimSpace(stationID); s != "" {
		cfg.StationID = s
	}
	if pageURL != "" {
		cfg.PageURL = pageURL
	}
	if err := cfg.Validate(); err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	logCfg := cfg.GetLogConfig()
	log, logCloser, err := logging.New(logCfg)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer logCloser.Close()

	// Audio backends write to fd 2 directly; keep it off the TUI unless the
	// log itself goes there.
	if logCfg.Output != logging.OutputStderr {
		capture, err := stderr.Start(log)
		if err != nil {
			log.Warn().Err(err).Msg("stderr capture unavailable")
		}
		defer capture.Stop()
	}

	stateMgr, err := openState(cfg.StatePath, log)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpStateOpen, err))
	}
	defer closeQuietly(stateMgr, log, "state")

	m := metrics.New()
	if cfg.HasMetrics() {
		srv := metrics.NewServer(cfg.Metrics.Addr, m, log)
		go func() {
			if err := srv.Start(); err != nil {
				log.Error().Err(err).Msg(errmsg.Format(errmsg.OpMetricsServe, err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	endpoints, timeout := cfg.GetAPIConfig()
	client, err := api.New(endpoints, timeout)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}

	engine := player.New(player.WithLogger(log))
	defer closeQuietly(engine, log, "player")

	var notifier *notify.NowPlaying
	if cfg.Notifications {
		notifier = notify.NewNowPlaying(notify.New())
		defer closeQuietly(notifier, log, "notify")
	}

	sink := app.NewSink()
	seq, err := bootstrap.New(bootstrap.Options{
		Env:             cfg.Environment(),
		PageURL:         cfg.PageURL,
		FallbackTimeout: cfg.FallbackTimeout(),
		Engine:          engine,
		Config:          client,
		Cookies:         client,
		Metadata:        client,
		Display:         sink,
		Directory:       sink,
		Logger:          log,
		Metrics:         m,
	})
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model, err := app.New(ctx, app.Options{
		StationID: cfg.StationID,
		Bootstrap: seq,
		Engine:    engine,
		State:     stateMgr,
		Sink:      sink,
		Notifier:  notifier,
		Logger:    log,
	})
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run console: %w", err)
	}
	cancel()
	seq.Wait()
	return nil
}

func openState(path string, log zerolog.Logger) (*state.Manager, error) {
	opt := state.WithLogger(log.With().Str("component", "state").Logger())
	if path != "" {
		return state.Open(path, opt)
	}
	return state.OpenDefault(opt)
}

func closeQuietly(c io.Closer, log zerolog.Logger, what string) {
	if err := c.Close(); err != nil {
		log.Warn().Err(err).Str("component", what).Msg("close failed")
	}
}
