package instance

import (
	"context"
	"sync"
	"testing"
	"time"

	"id5multiplexing/consent"
	"id5multiplexing/domain"
	"id5multiplexing/events"
	"id5multiplexing/helpers"
	"id5multiplexing/interfaces"
	"id5multiplexing/interfaces/mock"
	"id5multiplexing/messaging"
	"id5multiplexing/storage"

	"github.com/benbjohnson/clock"
	"github.com/go-kit/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	electionDelay = 100 * time.Millisecond
	waitFor       = 2 * time.Second
	tick          = 5 * time.Millisecond
)

var uspConsent = consent.Data{APIs: []consent.API{consent.APIUSPv1}, CcpaString: "1YNN"}

type testPage struct {
	top       *messaging.Window
	clock     *clock.Mock
	transport *mock.HTTPTransportMock
	meter     *mock.MeterRegistryMock
}

func newTestPage(t *testing.T) *testPage {
	t.Helper()
	top := messaging.NewTopWindow("top", log.NewNopLogger())
	t.Cleanup(top.Close)
	return &testPage{
		top:   top,
		clock: helpers.TestClock(),
		transport: &mock.HTTPTransportMock{
			PostFunc: func(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, error) {
				return []byte(`{"generic":{"universal_uid":"ID5*page","signature":"sig","cache_control":{"max_age_sec":3600}}}`), nil
			},
		},
		meter: &mock.MeterRegistryMock{
			CounterFunc: func(string, map[string]string) interfaces.Counter { return &mock.CounterMock{} },
			TimerFunc:   func(string, map[string]string) interfaces.Timer { return &mock.TimerMock{} },
			SummaryFunc: func(string, map[string]string) interfaces.Summary { return &mock.SummaryMock{} },
		},
	}
}

type testInstance struct {
	*Instance
	storage *storage.MemoryStorage
}

func (p *testPage) newInstance(t *testing.T, w *messaging.Window, id, sourceVersion string, mode domain.OperatingMode) testInstance {
	t.Helper()
	mem := storage.NewMemoryStorage()
	i := New(w, mem, Options{
		Properties: domain.Properties{
			ID:            id,
			Source:        "api",
			SourceVersion: sourceVersion,
			Href:          "https://www.example.com/article",
			FetchIdData:   domain.FetchIdData{PartnerID: 99},
		},
		OperatingMode: mode,
		Transport:     p.transport,
		Meter:         p.meter,
		Clock:         p.clock,
		Logger:        log.NewNopLogger(),
	})
	t.Cleanup(i.Unregister)
	return testInstance{Instance: i, storage: mem}
}

func awaitKnown(t *testing.T, n int, instances ...testInstance) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, i := range instances {
			if len(i.KnownInstances()) != n {
				return false
			}
		}
		return true
	}, waitFor, tick)
}

func awaitUid(t *testing.T, i testInstance, uid string) domain.UserID {
	t.Helper()
	var got domain.UserID
	require.Eventually(t, func() bool {
		var ok bool
		got, ok = i.Follower().UserID()
		return ok && got.ID == uid
	}, waitFor, tick)
	return got
}

func TestNew_Panics(t *testing.T) {
	p := newTestPage(t)
	mem := storage.NewMemoryStorage()
	opts := Options{Transport: p.transport, Meter: p.meter}

	t.Run("window_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "instance.instance.go: window is required", func() { New(nil, mem, opts) })
	})
	t.Run("storage_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "instance.instance.go: storage is required", func() { New(p.top, nil, opts) })
	})
	t.Run("transport_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "instance.instance.go: transport is required", func() {
			New(p.top, mem, Options{Meter: p.meter})
		})
	})
	t.Run("meter_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "instance.instance.go: meter is required", func() {
			New(p.top, mem, Options{Transport: p.transport})
		})
	})
}

func TestNew_Defaults(t *testing.T) {
	p := newTestPage(t)
	frame := p.top.AddFrame("ad")
	i := New(frame, storage.NewMemoryStorage(), Options{
		Properties: domain.Properties{Href: "https://news.example.co.uk/a?b=c"},
		Transport:  p.transport,
		Meter:      p.meter,
	})
	defer i.Unregister()

	props := i.Properties()
	_, err := uuid.Parse(props.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.ProtocolVersion, props.Version)
	assert.Equal(t, "example.co.uk", props.Domain)
	require.NotNil(t, props.FetchIdData.RefererInfo.NumIframes)
	assert.Equal(t, 1, *props.FetchIdData.RefererInfo.NumIframes)
	assert.Equal(t, domain.OperatingModeMultiplexing, i.OperatingMode())
	assert.Equal(t, AwaitingSchedule, i.ElectionState())
	assert.Equal(t, domain.Role(""), i.Role())
}

func TestInstance_HigherSourceVersionLeads(t *testing.T) {
	p := newTestPage(t)
	a := p.newInstance(t, p.top, "A", "1.0.26", domain.OperatingModeMultiplexing)
	b := p.newInstance(t, p.top, "B", "1.0.27", domain.OperatingModeMultiplexing)
	var elected []string
	var mu sync.Mutex
	a.On(events.LeaderElected, func(payload any) {
		mu.Lock()
		defer mu.Unlock()
		elected = append(elected, payload.(domain.Properties).ID)
	})

	a.Register(electionDelay)
	b.Register(electionDelay)
	a.Follower().UpdateConsent(uspConsent)
	awaitKnown(t, 1, a, b)
	assert.Equal(t, Scheduled, a.ElectionState())

	p.clock.Add(electionDelay + time.Millisecond)

	require.Eventually(t, func() bool {
		return a.Role() == domain.RoleFollower && b.Role() == domain.RoleLeader
	}, waitFor, tick)
	assert.Equal(t, Completed, a.ElectionState())
	assert.Equal(t, Completed, b.ElectionState())
	assert.Equal(t, "B", a.LeaderID())

	awaitUid(t, a, "ID5*page")
	awaitUid(t, b, "ID5*page")
	assert.Len(t, p.transport.PostCalls(), 1)
	mu.Lock()
	assert.Equal(t, []string{"B"}, elected)
	mu.Unlock()
}

func TestInstance_LeaderInAnotherFrame(t *testing.T) {
	p := newTestPage(t)
	frame := p.top.AddFrame("frame")
	a := p.newInstance(t, p.top, "A", "1.0.26", domain.OperatingModeMultiplexing)
	b := p.newInstance(t, frame, "B", "1.0.27", domain.OperatingModeMultiplexing)

	a.Register(electionDelay)
	b.Register(electionDelay)
	a.Follower().UpdateConsent(uspConsent)
	awaitKnown(t, 1, a, b)

	p.clock.Add(electionDelay + time.Millisecond)

	require.Eventually(t, func() bool {
		return a.Role() == domain.RoleFollower && b.Role() == domain.RoleLeader
	}, waitFor, tick)
	awaitUid(t, a, "ID5*page")
	awaitUid(t, b, "ID5*page")

	assert.Eventually(t, func() bool {
		v, err := a.storage.GetItem("id5id_last")
		return err == nil && v != ""
	}, waitFor, tick, "leader writes are replicated to the follower window")
}

func TestInstance_PassiveNeverElected(t *testing.T) {
	p := newTestPage(t)
	passive := p.newInstance(t, p.top, "P", "9.9.9", domain.OperatingModePassive)
	multi := p.newInstance(t, p.top, "M", "1.0.0", domain.OperatingModeMultiplexing)

	passive.Register(electionDelay)
	multi.Register(electionDelay)
	multi.Follower().UpdateConsent(uspConsent)
	awaitKnown(t, 1, passive, multi)

	p.clock.Add(electionDelay + time.Millisecond)

	require.Eventually(t, func() bool {
		return passive.Role() == domain.RoleFollower && multi.Role() == domain.RoleLeader
	}, waitFor, tick)
	awaitUid(t, passive, "ID5*page")
	awaitUid(t, multi, "ID5*page")
}

func TestInstance_LateJoiner(t *testing.T) {
	p := newTestPage(t)
	leaderInstance := p.newInstance(t, p.top, "L", "1.0.0", domain.OperatingModeMultiplexing)
	leaderInstance.Register(electionDelay)
	leaderInstance.Follower().UpdateConsent(uspConsent)
	p.clock.Add(electionDelay + time.Millisecond)
	awaitUid(t, leaderInstance, "ID5*page")
	require.Equal(t, domain.RoleLeader, leaderInstance.Role())

	late := p.newInstance(t, p.top, "Z", "2.0.0", domain.OperatingModeMultiplexing)
	late.Register(electionDelay)

	require.Eventually(t, func() bool { return late.ElectionState() == Canceled }, waitFor, tick)
	assert.Equal(t, domain.RoleFollower, late.Role())
	assert.Equal(t, "L", late.LeaderID())
	uid := awaitUid(t, late, "ID5*page")
	assert.True(t, uid.IsFromCache)
	assert.Len(t, p.transport.PostCalls(), 1, "late joiner with the same cache id is served from cache")

	p.clock.Add(electionDelay + time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, domain.RoleLeader, leaderInstance.Role(), "canceled election does not run")
	assert.Equal(t, domain.RoleFollower, late.Role())
}

func TestInstance_Singleton(t *testing.T) {
	p := newTestPage(t)
	single := p.newInstance(t, p.top, "S", "1.0.0", domain.OperatingModeSingleton)
	other := p.newInstance(t, p.top, "O", "1.0.0", domain.OperatingModeMultiplexing)

	single.Register(electionDelay)
	assert.Equal(t, Completed, single.ElectionState())
	assert.Equal(t, domain.RoleLeader, single.Role())

	other.Register(electionDelay)
	single.Follower().UpdateConsent(uspConsent)
	awaitUid(t, single, "ID5*page")
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, other.KnownInstances(), "singleton is invisible to its peers")
}

func TestInstance_Events(t *testing.T) {
	p := newTestPage(t)
	a := p.newInstance(t, p.top, "A", "1.0.0", domain.OperatingModeMultiplexing)
	b := p.newInstance(t, p.top, "B", "1.0.0", domain.OperatingModeMultiplexing)
	joined := make(chan string, 4)
	a.On(events.InstanceJoined, func(payload any) {
		joined <- payload.(domain.Properties).ID
	})

	a.Register(electionDelay)
	b.Register(electionDelay)

	select {
	case id := <-joined:
		assert.Equal(t, "B", id)
	case <-time.After(waitFor):
		t.Fatal("InstanceJoined not emitted")
	}
	known := a.KnownInstances()
	require.Len(t, known, 1)
	assert.Equal(t, domain.OperatingModeMultiplexing, known[0].State.OperatingMode)
	assert.Same(t, p.top, known[0].Window)
}

func TestInstance_Unregister(t *testing.T) {
	p := newTestPage(t)
	a := p.newInstance(t, p.top, "A", "1.0.0", domain.OperatingModeMultiplexing)
	a.Register(electionDelay)
	a.Unregister()

	assert.Equal(t, Canceled, a.ElectionState())
	p.clock.Add(electionDelay + time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, domain.Role(""), a.Role())
	_, ok := p.top.Registry().Lookup("A")
	assert.False(t, ok)
}
