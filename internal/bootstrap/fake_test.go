package bootstrap

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/rpconsole/internal/api"
	"github.com/llehouerou/rpconsole/internal/metrics"
	"github.com/llehouerou/rpconsole/internal/playback"
	"github.com/llehouerou/rpconsole/internal/player"
)

// fakeService stands in for the api client and the UI sinks.
type fakeService struct {
	mu sync.Mutex

	initResp  *api.InitResponse
	initErr   error
	initDelay time.Duration
	initBlock bool // never answer until ctx is done
	initCalls int
	initAt    time.Time
	prefix    string

	stations    []api.Station
	stationsErr error

	primeErr   error
	primeDelay time.Duration
	primeCalls int

	odItem     *api.ODItem
	odCalls    []string
	onAir      *api.OnAir
	onAirCalls []string

	shownOD    []*api.ODItem
	shownOnAir []*api.OnAir
	received   [][]api.Station
	receivedAt time.Time
}

func newFakeService() *fakeService {
	return &fakeService{initResp: &api.InitResponse{}}
}

func (f *fakeService) Init(ctx context.Context, _, prefix string) (*api.InitResponse, error) {
	f.mu.Lock()
	f.initCalls++
	f.initAt = time.Now()
	f.prefix = prefix
	resp, err, delay, block := f.initResp, f.initErr, f.initDelay, f.initBlock
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return resp, err
}

func (f *fakeService) StationList(context.Context) ([]api.Station, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stations, f.stationsErr
}

func (f *fakeService) PrimeCookie(ctx context.Context) error {
	f.mu.Lock()
	f.primeCalls++
	err, delay := f.primeErr, f.primeDelay
	f.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeService) OnDemand(_ context.Context, odURL string) (*api.ODItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.odCalls = append(f.odCalls, odURL)
	if f.odItem == nil {
		return nil, api.ErrNotFound
	}
	return f.odItem, nil
}

func (f *fakeService) OnAir(_ context.Context, stationID string) (*api.OnAir, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onAirCalls = append(f.onAirCalls, stationID)
	if f.onAir == nil {
		return nil, api.ErrNotFound
	}
	return f.onAir, nil
}

func (f *fakeService) ShowOnDemand(item *api.ODItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shownOD = append(f.shownOD, item)
}

func (f *fakeService) ShowOnAir(item *api.OnAir) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shownOnAir = append(f.shownOnAir, item)
}

func (f *fakeService) ReceiveStations(stations []api.Station) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, stations)
	f.receivedAt = time.Now()
}

func (f *fakeService) snapshot() fakeService {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeService{
		initCalls:  f.initCalls,
		initAt:     f.initAt,
		prefix:     f.prefix,
		primeCalls: f.primeCalls,
		odCalls:    append([]string(nil), f.odCalls...),
		onAirCalls: append([]string(nil), f.onAirCalls...),
		shownOD:    append([]*api.ODItem(nil), f.shownOD...),
		shownOnAir: append([]*api.OnAir(nil), f.shownOnAir...),
		received:   append([][]api.Station(nil), f.received...),
		receivedAt: f.receivedAt,
	}
}

var (
	liveSource = playback.Source{Type: "http", URL: "http://stream.example/live.mp3"}
	odSource   = playback.Source{Type: "http", URL: "http://media.example/show.mp3"}
)

func liveEnv() Environment {
	return Environment{
		StationID:  "340",
		Sources:    []playback.Source{liveSource},
		Live:       true,
		BufferTime: 500 * time.Millisecond,
	}
}

func odEnv() Environment {
	return Environment{
		StationID:  "340",
		Sources:    []playback.Source{odSource},
		BufferTime: 500 * time.Millisecond,
	}
}

type harness struct {
	seq     *Sequencer
	engine  *player.Mock
	svc     *fakeService
	metrics *metrics.Metrics
}

// newHarness wires a sequencer with the fake service in every role.
func newHarness(t *testing.T, env Environment, pageURL string, svc *fakeService) *harness {
	t.Helper()
	engine := player.NewMock()
	m := metrics.New()
	seq, err := New(Options{
		Env:       env,
		PageURL:   pageURL,
		Engine:    engine,
		Config:    svc,
		Cookies:   svc,
		Metadata:  svc,
		Display:   svc,
		Directory: svc,
		Logger:    zerolog.Nop(),
		Metrics:   m,
	})
	require.NoError(t, err)
	return &harness{seq: seq, engine: engine, svc: svc, metrics: m}
}
