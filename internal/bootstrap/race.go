package bootstrap

import (
	"context"
	"time"

	"github.com/llehouerou/rpconsole/internal/api"
	"github.com/llehouerou/rpconsole/internal/launch"
	"github.com/llehouerou/rpconsole/internal/playback"
)

// OutcomeSource tells which race producer committed.
type OutcomeSource int

const (
	SourceConfig OutcomeSource = iota + 1
	SourceFallback
)

// String returns the source name.
func (s OutcomeSource) String() string {
	switch s {
	case SourceConfig:
		return "config"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Reasons attached to an outcome.
const (
	ReasonConfig      = "config"
	ReasonTimeout     = "timeout"
	ReasonConfigError = "config-error"
)

// Outcome is the single committed result of the race.
type Outcome struct {
	Source   OutcomeSource
	Reason   string
	Mode     playback.Mode
	Params   playback.Params
	Applied  bool  // SetParams was called
	StartErr error // error returned by DataReady
	FetchErr error // config fetch error for ReasonConfigError
	Cookie   PrimeResult
	Reduced  bool
	Config   *api.InitResponse // nil unless Source is SourceConfig
	Launch   launch.Parameters
	Elapsed  time.Duration
}

// armFallback starts the fallback deadline. When it expires before the
// remote configuration commits, the host defaults are handed to the engine.
// Nothing is committed once ctx is done.
func (s *Sequencer) armFallback(ctx context.Context) *time.Timer {
	return time.AfterFunc(s.timeout, func() {
		if ctx.Err() != nil {
			return
		}
		s.commit(s.fallbackOutcome(ReasonTimeout))
	})
}

// requestConfig fetches the remote configuration and commits it. A failed
// fetch commits the fallback right away.
func (s *Sequencer) requestConfig(ctx context.Context) {
	resp, err := s.config.Init(ctx, s.env.StationID, s.launch.StationListPrefix)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.Warn().Err(err).Msg("remote configuration unavailable")
		o := s.fallbackOutcome(ReasonConfigError)
		o.FetchErr = err
		s.commit(o)
		return
	}
	s.commit(s.configOutcome(resp))
}

// fetchDirectory loads the station directory. It does not wait for cookie
// priming.
func (s *Sequencer) fetchDirectory(ctx context.Context) {
	s.background(func() {
		stations, err := s.config.StationList(ctx)
		if err != nil {
			s.log.Debug().Err(err).Msg("station directory fetch failed")
			return
		}
		if s.directory != nil {
			s.directory.ReceiveStations(stations)
		}
	})
}

func (s *Sequencer) fallbackOutcome(reason string) Outcome {
	return Outcome{
		Source: SourceFallback,
		Reason: reason,
		Params: s.env.defaultParams(s.resolution),
	}
}

// configOutcome merges the remote configuration over the resolved defaults.
// Sources from the response never replace an on-demand override.
func (s *Sequencer) configOutcome(resp *api.InitResponse) Outcome {
	params := s.env.defaultParams(s.resolution)
	if !s.resolution.Overridden && len(resp.Audio) > 0 {
		params.Sources = append([]playback.Source(nil), resp.Audio...)
	}
	if bt := resp.BufferTime(); bt > 0 {
		params.BufferTime = bt
	}
	if resp.Volume != nil {
		params.Volume = max(0, min(*resp.Volume, 100))
	}
	return Outcome{
		Source: SourceConfig,
		Reason: ReasonConfig,
		Params: params,
		Config: resp,
	}
}

// commit hands the outcome to the engine if nothing was committed yet.
func (s *Sequencer) commit(o Outcome) bool {
	won := s.outcome.Commit(func() Outcome { return s.handOff(o) })
	if !won {
		s.log.Debug().
			Stringer("producer", o.Source).
			Str("reason", o.Reason).
			Msg("outcome already committed, discarding")
		s.metrics.Discarded(o.Source.String())
	}
	return won
}

func (s *Sequencer) handOff(o Outcome) Outcome {
	o.Mode = s.resolution.Mode
	o.Cookie = PrimeResult(s.cookie.Load())
	o.Reduced = s.env.ForceReducedFunc || o.Cookie == PrimeFailed || o.Cookie == PrimePending
	o.Launch = s.launch

	if len(o.Params.Sources) > 0 {
		s.engine.SetParams(o.Params)
		o.Applied = true
	}
	if err := s.engine.DataReady(); err != nil {
		s.log.Warn().Err(err).Msg("engine refused to start")
		o.StartErr = err
	}

	o.Elapsed = time.Since(s.begin)
	s.metrics.Outcome(o.Source.String(), o.Reason)
	s.metrics.ObserveBootstrap(o.Elapsed)
	s.log.Info().
		Stringer("source", o.Source).
		Str("reason", o.Reason).
		Bool("applied", o.Applied).
		Bool("reduced", o.Reduced).
		Dur("elapsed", o.Elapsed).
		Msg("bootstrap committed")
	return o
}
