package widget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"heating_card/internal/card"
	"heating_card/internal/hass"
	"heating_card/internal/models"
	"heating_card/internal/signals"
)

const entity = "climate.living_room_hm"

var t0 = time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type manualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }

func (m *manualTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *manualTicker) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

type harness struct {
	w       *Widget
	fake    *hass.FakeClient
	sink    *signals.FakeSink
	clock   *clock
	tickers chan *manualTicker
	cancel  context.CancelFunc
}

func snapshot(target float64) models.EntitySnapshot {
	return models.EntitySnapshot{
		EntityID:     entity,
		FriendlyName: "Living Room",
		CurrentTemp:  models.Some(19.5),
		TargetTemp:   models.Some(target),
		HVACAction:   models.HVACIdle,
		Trend:        models.TrendRising,
	}
}

func boosted(s models.EntitySnapshot, b models.Boost) models.EntitySnapshot {
	s.Boost = models.Some(b)
	return s
}

func mount(t *testing.T, fake *hass.FakeClient, timeout time.Duration) *harness {
	t.Helper()
	h := &harness{
		fake:    fake,
		sink:    &signals.FakeSink{},
		clock:   &clock{now: t0},
		tickers: make(chan *manualTicker, 8),
	}
	w, err := New(Options{
		CardID:         "living",
		Config:         models.CardConfig{Entity: entity},
		Feed:           fake,
		Caller:         fake,
		Sink:           h.sink,
		CommandTimeout: timeout,
		Now:            h.clock.Now,
		NewTicker: func(time.Duration) card.Ticker {
			tk := &manualTicker{ch: make(chan time.Time, 1)}
			h.tickers <- tk
			return tk
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.w = w

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go w.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-w.Done()
	})
	return h
}

func (h *harness) next(t *testing.T, kind UpdateKind) Update {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case u := <-h.w.Updates():
			if u.Kind == kind {
				return u
			}
		case <-deadline:
			t.Fatalf("no %s update", kind)
		}
	}
}

func (h *harness) ticker(t *testing.T) *manualTicker {
	t.Helper()
	select {
	case tk := <-h.tickers:
		return tk
	case <-time.After(2 * time.Second):
		t.Fatalf("countdown was not started")
	}
	return nil
}

func waitCalls(t *testing.T, fake *hass.FakeClient, n int) []hass.ServiceCall {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if calls := fake.CallsSnapshot(); len(calls) >= n {
			return calls
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d service calls, got %d", n, len(fake.CallsSnapshot()))
	return nil
}

func TestNewRequiresEntity(t *testing.T) {
	fake := hass.NewFakeClient()
	_, err := New(Options{Feed: fake, Caller: fake})
	if !errors.Is(err, models.ErrMissingEntity) {
		t.Fatalf("expected ErrMissingEntity, got %v", err)
	}
}

func TestMountRendersCurrentState(t *testing.T) {
	h := mount(t, hass.NewFakeClient(snapshot(21)), 0)

	v := h.next(t, UpdateView).View
	if v.Name != "Living Room" || v.CurrentTemp != "19.5" || v.TargetTemp != "21.0" {
		t.Fatalf("unexpected view: %+v", v)
	}
	if v.Boost.Active {
		t.Fatalf("boost should be inactive")
	}
}

func TestMountMissingEntity(t *testing.T) {
	h := mount(t, hass.NewFakeClient(), 0)

	if v := h.next(t, UpdateView).View; !v.NotFound {
		t.Fatalf("expected not-found view, got %+v", v)
	}

	h.fake.Push(snapshot(20))
	if v := h.next(t, UpdateView).View; v.NotFound || v.TargetTemp != "20.0" {
		t.Fatalf("expected entity view after reappearance, got %+v", v)
	}
}

func TestActivateBoostSendsPresetThenTemperature(t *testing.T) {
	h := mount(t, hass.NewFakeClient(snapshot(20)), 0)
	h.next(t, UpdateView)

	if err := h.w.ActivateBoost(); err != nil {
		t.Fatalf("ActivateBoost: %v", err)
	}
	v := h.next(t, UpdateView).View
	if !v.Boost.Active || !v.Boost.Pending || v.Boost.Countdown != "30:00" {
		t.Fatalf("expected optimistic boost, got %+v", v.Boost)
	}

	calls := waitCalls(t, h.fake, 2)
	if calls[0].Domain != "climate" || calls[0].Service != "set_preset_mode" || calls[0].Data["preset_mode"] != "boost" {
		t.Fatalf("unexpected first call: %+v", calls[0])
	}
	if calls[1].Service != "set_temperature" || calls[1].Data["temperature"] != 22.0 {
		t.Fatalf("unexpected second call: %+v", calls[1])
	}
	if calls[1].Data["entity_id"] != entity {
		t.Fatalf("unexpected entity: %v", calls[1].Data["entity_id"])
	}

	h.fake.Push(boosted(snapshot(22), models.Boost{Temperature: models.Some(22.0), TimeRemainingMinutes: models.Some(30.0)}))
	v = h.next(t, UpdateView).View
	if !v.Boost.Active || v.Boost.Pending {
		t.Fatalf("expected confirmed boost, got %+v", v.Boost)
	}
}

func TestActivateBoostPresetFailureRollsBack(t *testing.T) {
	fake := hass.NewFakeClient(snapshot(20))
	fake.Handle = func(_ context.Context, call hass.ServiceCall) error {
		if call.Service == "set_preset_mode" {
			return &hass.ServiceError{Code: "not_supported", Message: "boost unavailable"}
		}
		return nil
	}
	h := mount(t, fake, 0)
	h.next(t, UpdateView)

	h.w.ActivateBoost()
	if v := h.next(t, UpdateView).View; !v.Boost.Active {
		t.Fatalf("expected optimistic view first")
	}
	tk := h.ticker(t)

	v := h.next(t, UpdateView).View
	if v.Boost.Active || v.Boost.Pending || v.Boost.Countdown != "" {
		t.Fatalf("expected rollback, got %+v", v.Boost)
	}
	if !tk.Stopped() {
		t.Fatalf("countdown should be stopped after rollback")
	}
	if calls := fake.CallsSnapshot(); len(calls) != 1 {
		t.Fatalf("set_temperature must not follow a failed preset change, calls=%+v", calls)
	}
}

func TestActivateBoostTemperatureFailureRollsBack(t *testing.T) {
	fake := hass.NewFakeClient(snapshot(20))
	fake.Handle = func(_ context.Context, call hass.ServiceCall) error {
		if call.Service == "set_temperature" {
			return errors.New("rejected")
		}
		return nil
	}
	h := mount(t, fake, 0)
	h.next(t, UpdateView)

	h.w.ActivateBoost()
	h.next(t, UpdateView)

	if v := h.next(t, UpdateView).View; v.Boost.Active {
		t.Fatalf("expected rollback, got %+v", v.Boost)
	}
	if calls := fake.CallsSnapshot(); len(calls) != 2 {
		t.Fatalf("expected both calls, got %+v", calls)
	}
}

func TestActivateBoostTimeoutRollsBack(t *testing.T) {
	fake := hass.NewFakeClient(snapshot(20))
	fake.Handle = func(ctx context.Context, _ hass.ServiceCall) error {
		<-ctx.Done()
		return ctx.Err()
	}
	h := mount(t, fake, 20*time.Millisecond)
	h.next(t, UpdateView)

	h.w.ActivateBoost()
	h.next(t, UpdateView)

	if v := h.next(t, UpdateView).View; v.Boost.Active {
		t.Fatalf("expected rollback after timeout, got %+v", v.Boost)
	}
}

func TestDeactivateFailureIsNotRolledBack(t *testing.T) {
	fake := hass.NewFakeClient(boosted(snapshot(22), models.Boost{
		Temperature:          models.Some(22.0),
		TimeRemainingMinutes: models.Some(10.0),
	}))
	release := make(chan struct{})
	fake.Handle = func(ctx context.Context, _ hass.ServiceCall) error {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return errors.New("offline")
	}
	h := mount(t, fake, 0)

	if v := h.next(t, UpdateView).View; !v.Boost.Active || v.Boost.Countdown != "10:00" {
		t.Fatalf("expected active boost, got %+v", v.Boost)
	}
	h.ticker(t)

	h.w.ToggleBoost()
	if v := h.next(t, UpdateView).View; v.Boost.Active {
		t.Fatalf("expected boost off locally, got %+v", v.Boost)
	}

	calls := waitCalls(t, fake, 1)
	if calls[0].Service != "set_preset_mode" || calls[0].Data["preset_mode"] != "schedule" {
		t.Fatalf("unexpected call: %+v", calls[0])
	}

	// While the command is in flight, boost reports keep the control off.
	h.fake.Push(boosted(snapshot(22.5), models.Boost{
		Temperature:          models.Some(22.0),
		TimeRemainingMinutes: models.Some(9.0),
	}))
	if v := h.next(t, UpdateView).View; v.Boost.Active {
		t.Fatalf("boost reappeared before the deactivation resolved: %+v", v.Boost)
	}

	// Once it has failed the control follows the reported boost again.
	close(release)
	v := h.next(t, UpdateView).View
	if !v.Boost.Active || !v.Boost.ActiveBackground || v.Boost.Countdown != "09:00" {
		t.Fatalf("expected reported boost to show again, got %+v", v.Boost)
	}
	h.ticker(t)

	h.fake.Push(boosted(snapshot(23), models.Boost{
		Temperature:          models.Some(22.0),
		TimeRemainingMinutes: models.Some(8.0),
	}))
	if v := h.next(t, UpdateView).View; !v.Boost.Active || v.TargetTemp != "23.0" {
		t.Fatalf("expected boost to stay shown, got %+v", v)
	}
	if len(fake.CallsSnapshot()) != 1 {
		t.Fatalf("a failed deactivation must not be retried")
	}
}

func TestToggleActivatesWhenIdle(t *testing.T) {
	h := mount(t, hass.NewFakeClient(snapshot(19)), 0)
	h.next(t, UpdateView)

	h.w.ToggleBoost()
	if v := h.next(t, UpdateView).View; !v.Boost.Active {
		t.Fatalf("expected activation")
	}
	calls := waitCalls(t, h.fake, 2)
	if calls[1].Data["temperature"] != 21.0 {
		t.Fatalf("expected target+2, got %v", calls[1].Data["temperature"])
	}
}

func TestCountdownTicksAndExpires(t *testing.T) {
	end := t0.Add(90 * time.Second)
	h := mount(t, hass.NewFakeClient(boosted(snapshot(22), models.Boost{
		Temperature: models.Some(22.0),
		EndTime:     models.Some(end),
	})), 0)
	h.next(t, UpdateView)
	tk := h.ticker(t)

	h.clock.Advance(time.Second)
	tk.ch <- h.clock.Now()
	u := h.next(t, UpdateCountdown)
	if u.Countdown.RemainingSeconds != 89 || u.Countdown.Text != "01:29" {
		t.Fatalf("unexpected countdown: %+v", u.Countdown)
	}

	h.clock.Advance(2 * time.Minute)
	tk.ch <- h.clock.Now()
	v := h.next(t, UpdateView).View
	if v.Boost.Countdown != "" || v.Boost.RemainingSeconds != 0 {
		t.Fatalf("countdown should be cleared, got %+v", v.Boost)
	}
	if !tk.Stopped() {
		t.Fatalf("ticker should be stopped at expiry")
	}
	if len(h.fake.CallsSnapshot()) != 0 {
		t.Fatalf("expiry must not issue commands")
	}
}

func TestTapEmitsSignals(t *testing.T) {
	h := mount(t, hass.NewFakeClient(snapshot(20)), 0)
	h.next(t, UpdateView)

	h.w.Tap(true)
	h.w.Tap(false)

	first := h.next(t, UpdateSignal).Signal
	second := h.next(t, UpdateSignal).Signal
	if first.Type != models.SignalAction || second.Type != models.SignalMoreInfo {
		t.Fatalf("unexpected signals: %s, %s", first.Type, second.Type)
	}
	if first.Card != "living" || first.Instance != h.w.ID() || first.ID == "" {
		t.Fatalf("signal not stamped: %+v", first)
	}
	if d, ok := second.Data.(models.MoreInfoDetail); !ok || d.EntityID != entity {
		t.Fatalf("unexpected more-info detail: %#v", second.Data)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(h.sink.Types()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := h.sink.Types(); len(got) != 2 {
		t.Fatalf("expected 2 signals at the sink, got %v", got)
	}
}

func TestUnmountReleasesResources(t *testing.T) {
	h := mount(t, hass.NewFakeClient(boosted(snapshot(22), models.Boost{
		Temperature:          models.Some(22.0),
		TimeRemainingMinutes: models.Some(5.0),
	})), 0)
	h.next(t, UpdateView)
	tk := h.ticker(t)

	if h.fake.Watchers(entity) != 1 {
		t.Fatalf("expected one watcher")
	}

	h.cancel()
	select {
	case <-h.w.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("widget did not stop")
	}
	if !tk.Stopped() {
		t.Fatalf("ticker should be released on unmount")
	}
	if h.fake.Watchers(entity) != 0 {
		t.Fatalf("watch should be released on unmount")
	}
	if err := h.w.ToggleBoost(); !errors.Is(err, ErrUnmounted) {
		t.Fatalf("expected ErrUnmounted, got %v", err)
	}
}

func newIdleWidget(t *testing.T) *Widget {
	t.Helper()
	fake := hass.NewFakeClient()
	w, err := New(Options{Config: models.CardConfig{Entity: entity}, Feed: fake, Caller: fake})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func drain(w *Widget) []Update {
	var out []Update
	for {
		select {
		case u := <-w.updates:
			out = append(out, u)
		default:
			return out
		}
	}
}

func TestPublishKeepsLatestViewWhenFull(t *testing.T) {
	w := newIdleWidget(t)
	w.publish(Update{Kind: UpdateSignal, Signal: models.Signal{ID: "s1"}})
	w.publish(Update{Kind: UpdateView, View: card.View{TargetTemp: "20.0"}})
	for i := 0; i < updateBuffer-2; i++ {
		w.publish(Update{Kind: UpdateCountdown, Countdown: Countdown{RemainingSeconds: i}})
	}

	w.publish(Update{Kind: UpdateCountdown})
	w.publish(Update{Kind: UpdateView, View: card.View{TargetTemp: "21.0"}})

	got := drain(w)
	if len(got) != 2 {
		t.Fatalf("expected signal and latest view, got %d updates", len(got))
	}
	if got[0].Kind != UpdateSignal || got[0].Signal.ID != "s1" {
		t.Fatalf("signal lost: %+v", got[0])
	}
	if got[1].Kind != UpdateView || got[1].View.TargetTemp != "21.0" {
		t.Fatalf("expected latest view last, got %+v", got[1])
	}
}

func TestPublishSignalKeepsNewestQueuedView(t *testing.T) {
	w := newIdleWidget(t)
	for i := 0; i < updateBuffer; i++ {
		w.publish(Update{Kind: UpdateView, View: card.View{Name: string(rune('a' + i%26))}})
	}
	last := string(rune('a' + (updateBuffer-1)%26))

	w.publish(Update{Kind: UpdateSignal, Signal: models.Signal{ID: "tap"}})

	got := drain(w)
	if len(got) != 2 || got[0].View.Name != last || got[1].Signal.ID != "tap" {
		t.Fatalf("unexpected queue after compaction: %+v", got)
	}
}

func TestPublishDropsCountdownWhenFull(t *testing.T) {
	w := newIdleWidget(t)
	for i := 0; i < updateBuffer; i++ {
		w.publish(Update{Kind: UpdateSignal})
	}
	w.publish(Update{Kind: UpdateCountdown})

	got := drain(w)
	if len(got) != updateBuffer {
		t.Fatalf("expected a full queue, got %d", len(got))
	}
	for _, u := range got {
		if u.Kind != UpdateSignal {
			t.Fatalf("countdown should have been dropped")
		}
	}
}
