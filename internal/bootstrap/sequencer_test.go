package bootstrap

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/rpconsole/internal/api"
	"github.com/llehouerou/rpconsole/internal/playback"
	"github.com/llehouerou/rpconsole/internal/player"
)

const pageURL = "https://console.example/340"

func TestRun_StartOffsetSeeksOnceOnLoad(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		h := newHarness(t, odEnv(), pageURL+"?t=00:01:30", newFakeService())
		_, err := h.seq.Run(ctx)
		require.NoError(t, err)

		res := h.seq.Resolution()
		assert.Equal(t, playback.ModeOnDemand, res.Mode)
		require.NotNil(t, res.Seek)
		assert.Equal(t, 90*time.Second, res.Seek.Target())
		assert.Empty(t, h.engine.SeekCalls(), "no seek before content loads")

		h.engine.SimulateLoaded(200 * time.Second)
		synctest.Wait()
		h.engine.SimulateLoaded(200 * time.Second)
		synctest.Wait()

		assert.Equal(t, []time.Duration{90 * time.Second}, h.engine.SeekCalls())
		assert.True(t, res.Seek.Spent())
		assert.InDelta(t, 1.0, testutil.ToFloat64(h.metrics.PendingSeeks.WithLabelValues("executed")), 0)
	})
}

func TestRun_LiveModeNeverSeeks(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		h := newHarness(t, liveEnv(), pageURL, newFakeService())
		_, err := h.seq.Run(ctx)
		require.NoError(t, err)

		res := h.seq.Resolution()
		assert.Equal(t, playback.ModeLive, res.Mode)
		assert.Nil(t, res.Seek)

		h.engine.SimulateLoaded(time.Hour)
		synctest.Wait()
		assert.Empty(t, h.engine.SeekCalls())
	})
}

func TestRun_LiveModeIgnoresOffsetInQuery(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		h := newHarness(t, liveEnv(), pageURL+"?t=90", newFakeService())
		_, err := h.seq.Run(ctx)
		require.NoError(t, err)
		assert.Nil(t, h.seq.Resolution().Seek)
	})
}

func TestRun_ConfigBeforeTimer(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		vol := 80
		svc := newFakeService()
		svc.initDelay = 2 * time.Second
		svc.initResp = &api.InitResponse{
			Volume:       &vol,
			BufferTimeMs: 3000,
			Audio:        []playback.Source{{Type: "http", URL: "http://remote/live.mp3"}},
		}
		h := newHarness(t, liveEnv(), pageURL, svc)

		o, err := h.seq.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, SourceConfig, o.Source)
		assert.Equal(t, ReasonConfig, o.Reason)
		assert.Equal(t, 2*time.Second, o.Elapsed)
		assert.Same(t, svc.initResp, o.Config)

		// Let the fallback timer fire.
		time.Sleep(4 * time.Second)
		synctest.Wait()

		calls := h.engine.ParamsCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, "http://remote/live.mp3", calls[0].Sources[0].URL)
		assert.Equal(t, 80, calls[0].Volume)
		assert.Equal(t, 3*time.Second, calls[0].BufferTime)
		assert.True(t, calls[0].Live)
		assert.Equal(t, 1, h.engine.DataReadyCalls())

		got, ok := h.seq.Outcome()
		require.True(t, ok)
		assert.Equal(t, SourceConfig, got.Source)
		assert.InDelta(t, 1.0, testutil.ToFloat64(h.metrics.RaceDiscarded.WithLabelValues("fallback")), 0)
	})
}

func TestRun_ConfigNeverArrives(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		svc := newFakeService()
		svc.initBlock = true
		h := newHarness(t, liveEnv(), pageURL, svc)

		start := time.Now()
		o, err := h.seq.Run(ctx)
		require.NoError(t, err)

		assert.Equal(t, DefaultFallbackTimeout, time.Since(start))
		assert.Equal(t, SourceFallback, o.Source)
		assert.Equal(t, ReasonTimeout, o.Reason)
		assert.Nil(t, o.Config)

		calls := h.engine.ParamsCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, playback.Params{
			Sources:    []playback.Source{liveSource},
			Live:       true,
			BufferTime: 500 * time.Millisecond,
			Volume:     playback.DefaultVolume,
		}, calls[0])
		assert.Equal(t, 1, h.engine.DataReadyCalls())
	})
}

func TestRun_LateConfigIsDiscarded(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		svc := newFakeService()
		svc.initDelay = 7 * time.Second
		svc.initResp = &api.InitResponse{
			Audio: []playback.Source{{Type: "http", URL: "http://remote/late.mp3"}},
		}
		h := newHarness(t, liveEnv(), pageURL, svc)

		o, err := h.seq.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, SourceFallback, o.Source)

		h.seq.Wait()

		calls := h.engine.ParamsCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, liveSource, calls[0].Sources[0])
		assert.Equal(t, 1, h.engine.DataReadyCalls())
		assert.InDelta(t, 1.0, testutil.ToFloat64(h.metrics.RaceDiscarded.WithLabelValues("config")), 0)

		got, _ := h.seq.Outcome()
		assert.Equal(t, SourceFallback, got.Source)
	})
}

func TestRun_SimultaneousProducersCommitOnce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		svc := newFakeService()
		svc.initDelay = DefaultFallbackTimeout
		h := newHarness(t, liveEnv(), pageURL, svc)

		_, err := h.seq.Run(ctx)
		require.NoError(t, err)
		h.seq.Wait()
		synctest.Wait()

		assert.Len(t, h.engine.ParamsCalls(), 1)
		assert.Equal(t, 1, h.engine.DataReadyCalls())
		discarded := testutil.ToFloat64(h.metrics.RaceDiscarded.WithLabelValues("config")) +
			testutil.ToFloat64(h.metrics.RaceDiscarded.WithLabelValues("fallback"))
		assert.InDelta(t, 1.0, discarded, 0)
	})
}

func TestRun_ForcedReducedSkipsPrimer(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		env := liveEnv()
		env.ForceReducedFunc = true
		svc := newFakeService()
		h := newHarness(t, env, pageURL, svc)

		start := time.Now()
		o, err := h.seq.Run(ctx)
		require.NoError(t, err)

		snap := svc.snapshot()
		assert.Zero(t, snap.primeCalls)
		assert.Equal(t, 1, snap.initCalls)
		assert.Equal(t, start, snap.initAt, "race starts immediately")
		assert.Equal(t, PrimeSkipped, o.Cookie)
		assert.True(t, o.Reduced)
		assert.InDelta(t, 1.0, testutil.ToFloat64(h.metrics.CookiePrimes.WithLabelValues("skipped")), 0)
	})
}

func TestRun_ForcedReducedWithoutCookieService(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		env := liveEnv()
		env.ForceReducedFunc = true
		svc := newFakeService()
		seq, err := New(Options{
			Env:    env,
			Engine: player.NewMock(),
			Config: svc,
			Logger: zerolog.Nop(),
		})
		require.NoError(t, err)

		o, err := seq.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, PrimeSkipped, o.Cookie)
	})
}

func TestRun_PrimerRunsBeforeRace(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		svc := newFakeService()
		svc.primeDelay = time.Second
		h := newHarness(t, liveEnv(), pageURL, svc)

		start := time.Now()
		o, err := h.seq.Run(ctx)
		require.NoError(t, err)

		snap := svc.snapshot()
		assert.Equal(t, 1, snap.primeCalls)
		assert.Equal(t, start.Add(time.Second), snap.initAt)
		assert.Equal(t, PrimeSucceeded, o.Cookie)
		assert.False(t, o.Reduced)
	})
}

func TestRun_SlowPrimerDoesNotDelayFallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		svc := newFakeService()
		svc.primeDelay = 3 * DefaultFallbackTimeout
		svc.stations = []api.Station{{ID: "340", Name: "Teddy"}}
		h := newHarness(t, liveEnv(), pageURL, svc)

		start := time.Now()
		o, err := h.seq.Run(ctx)
		require.NoError(t, err)

		assert.Equal(t, DefaultFallbackTimeout, time.Since(start))
		assert.Equal(t, SourceFallback, o.Source)
		assert.Equal(t, ReasonTimeout, o.Reason)
		assert.Equal(t, PrimePending, o.Cookie)
		assert.True(t, o.Reduced)
		assert.Equal(t, 1, h.engine.DataReadyCalls())

		synctest.Wait()
		snap := svc.snapshot()
		assert.Zero(t, snap.initCalls, "config request still waits for priming")
		require.Len(t, snap.received, 1)
		assert.Equal(t, start, snap.receivedAt, "directory fetch does not wait for priming")
	})
}

func TestRun_PrimerFailureDegrades(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		svc := newFakeService()
		svc.primeErr = api.ErrCookieNotSet
		h := newHarness(t, liveEnv(), pageURL, svc)

		o, err := h.seq.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, PrimeFailed, o.Cookie)
		assert.True(t, o.Reduced)
		assert.Equal(t, SourceConfig, o.Source, "race still runs")
		assert.Equal(t, 1, h.engine.DataReadyCalls())
	})
}

func TestRun_ConfigErrorCommitsFallbackImmediately(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		fetchErr := errors.New("connection refused")
		svc := newFakeService()
		svc.initErr = fetchErr
		h := newHarness(t, odEnv(), pageURL, svc)

		o, err := h.seq.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, SourceFallback, o.Source)
		assert.Equal(t, ReasonConfigError, o.Reason)
		assert.ErrorIs(t, o.FetchErr, fetchErr)
		assert.Zero(t, o.Elapsed)

		time.Sleep(DefaultFallbackTimeout)
		synctest.Wait()
		assert.Len(t, h.engine.ParamsCalls(), 1)
		assert.InDelta(t, 1.0, testutil.ToFloat64(h.metrics.RaceDiscarded.WithLabelValues("fallback")), 0)
	})
}

func TestRun_OverrideSurvivesConfigSources(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		svc := newFakeService()
		svc.initResp = &api.InitResponse{
			Audio: []playback.Source{{Type: "http", URL: "http://remote/live.mp3"}},
		}
		h := newHarness(t, liveEnv(), pageURL+"?rpAodUrl=https://cdn.example/ep1.mp3&t=30", svc)

		o, err := h.seq.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, playback.ModeOnDemand, o.Mode)
		assert.Equal(t, []playback.Source{{Type: "http", URL: "https://cdn.example/ep1.mp3"}}, o.Params.Sources)
		assert.False(t, o.Params.Live)
		require.NotNil(t, h.seq.Resolution().Seek)

		h.seq.Wait()
		assert.Empty(t, svc.snapshot().odCalls, "no metadata lookup for an override")
	})
}

func TestRun_VolumeClampedAndDefaulted(t *testing.T) {
	tests := []struct {
		name   string
		volume *int
		want   int
	}{
		{"absent", nil, playback.DefaultVolume},
		{"in range", intPtr(35), 35},
		{"too loud", intPtr(150), 100},
		{"negative", intPtr(-3), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				ctx, cancel := context.WithCancel(context.Background())
				defer cancel()

				svc := newFakeService()
				svc.initResp = &api.InitResponse{Volume: tt.volume}
				h := newHarness(t, liveEnv(), pageURL, svc)

				o, err := h.seq.Run(ctx)
				require.NoError(t, err)
				assert.Equal(t, tt.want, o.Params.Volume)
				assert.Equal(t, []playback.Source{liveSource}, o.Params.Sources, "env sources kept")
				assert.Equal(t, 500*time.Millisecond, o.Params.BufferTime)
			})
		})
	}
}

func intPtr(v int) *int { return &v }

func TestRun_NoSourcesSkipsSetParams(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		env := liveEnv()
		env.Sources = nil
		h := newHarness(t, env, pageURL, newFakeService())

		o, err := h.seq.Run(ctx)
		require.NoError(t, err)
		assert.False(t, o.Applied)
		assert.Empty(t, h.engine.ParamsCalls())
		assert.Equal(t, 1, h.engine.DataReadyCalls())
	})
}

func TestRun_DataReadyErrorIsReported(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		h := newHarness(t, liveEnv(), pageURL, newFakeService())
		h.engine.SetDataReadyError(player.ErrNoSource)

		o, err := h.seq.Run(ctx)
		require.NoError(t, err)
		assert.True(t, o.Applied)
		assert.ErrorIs(t, o.StartErr, player.ErrNoSource)
	})
}

func TestRun_PassesStationListPrefix(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		svc := newFakeService()
		h := newHarness(t, liveEnv(), pageURL+"?stationlistprefix=BBC", svc)

		o, err := h.seq.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, "bbc", svc.snapshot().prefix)
		assert.Equal(t, "bbc", o.Launch.StationListPrefix)
	})
}

func TestRun_NowPlayingAndDirectory(t *testing.T) {
	t.Run("live fetches on-air", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			svc := newFakeService()
			svc.onAir = &api.OnAir{Artist: "Band", Title: "Song"}
			svc.stations = []api.Station{{ID: "340", Name: "Teddy"}}
			h := newHarness(t, liveEnv(), pageURL, svc)

			_, err := h.seq.Run(ctx)
			require.NoError(t, err)
			h.seq.Wait()

			snap := svc.snapshot()
			assert.Equal(t, []string{"340"}, snap.onAirCalls)
			assert.Empty(t, snap.odCalls)
			require.Len(t, snap.shownOnAir, 1)
			assert.Equal(t, "Song", snap.shownOnAir[0].Title)
			require.Len(t, snap.received, 1)
			assert.Equal(t, "Teddy", snap.received[0][0].Name)
		})
	})

	t.Run("on-demand fetches item by page url", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			svc := newFakeService()
			svc.odItem = &api.ODItem{Name: "Show"}
			h := newHarness(t, odEnv(), pageURL, svc)

			_, err := h.seq.Run(ctx)
			require.NoError(t, err)
			h.seq.Wait()

			snap := svc.snapshot()
			assert.Equal(t, []string{pageURL}, snap.odCalls)
			assert.Empty(t, snap.onAirCalls)
			require.Len(t, snap.shownOD, 1)
			assert.Equal(t, "Show", snap.shownOD[0].Name)
		})
	})

	t.Run("sink failures stay quiet", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			svc := newFakeService()
			svc.stationsErr = errors.New("boom")
			h := newHarness(t, liveEnv(), pageURL, svc)

			o, err := h.seq.Run(ctx)
			require.NoError(t, err)
			h.seq.Wait()

			assert.Equal(t, SourceConfig, o.Source)
			snap := svc.snapshot()
			assert.Empty(t, snap.received)
			assert.Empty(t, snap.shownOnAir)
		})
	})
}

func TestRun_SecondCallFails(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		h := newHarness(t, liveEnv(), pageURL, newFakeService())
		_, err := h.seq.Run(ctx)
		require.NoError(t, err)

		_, err = h.seq.Run(ctx)
		assert.ErrorIs(t, err, ErrAlreadyRun)
		assert.Equal(t, 1, h.engine.DataReadyCalls())
	})
}

func TestRun_ContextCancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		svc := newFakeService()
		svc.initBlock = true
		h := newHarness(t, liveEnv(), pageURL, svc)

		time.AfterFunc(time.Second, cancel)
		_, err := h.seq.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRun_CancelledBeforeDeadlineCommitsNothing(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		svc := newFakeService()
		svc.initBlock = true
		h := newHarness(t, liveEnv(), pageURL, svc)

		time.AfterFunc(time.Second, cancel)
		_, err := h.seq.Run(ctx)
		require.ErrorIs(t, err, context.Canceled)

		time.Sleep(2 * DefaultFallbackTimeout)
		h.seq.Wait()

		_, ok := h.seq.Outcome()
		assert.False(t, ok)
		assert.Empty(t, h.engine.ParamsCalls())
		assert.Zero(t, h.engine.DataReadyCalls())
	})
}

func TestRun_CustomFallbackTimeout(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		svc := newFakeService()
		svc.initBlock = true
		seq, err := New(Options{
			Env:             liveEnv(),
			FallbackTimeout: 1500 * time.Millisecond,
			Engine:          player.NewMock(),
			Config:          svc,
			Cookies:         svc,
			Logger:          zerolog.Nop(),
		})
		require.NoError(t, err)

		o, err := seq.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1500*time.Millisecond, o.Elapsed)
	})
}

func TestNew_Validation(t *testing.T) {
	svc := newFakeService()
	engine := player.NewMock()

	tests := []struct {
		name string
		opts Options
	}{
		{"invalid environment", Options{Env: Environment{}, Engine: engine, Config: svc, Cookies: svc}},
		{"missing engine", Options{Env: liveEnv(), Config: svc, Cookies: svc}},
		{"missing config", Options{Env: liveEnv(), Engine: engine, Cookies: svc}},
		{"missing cookies", Options{Env: liveEnv(), Engine: engine, Config: svc}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			assert.Error(t, err)
		})
	}
}
