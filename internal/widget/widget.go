// Package widget runs one mounted heating card: it feeds snapshots, user
// intents, command results and countdown ticks through a single goroutine.
package widget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"heating_card/internal/card"
	"heating_card/internal/hass"
	"heating_card/internal/logger"
	"heating_card/internal/models"
	"heating_card/internal/signals"

	"github.com/google/uuid"
)

// DefaultCommandTimeout bounds each service call when Options leaves it unset.
const DefaultCommandTimeout = 30 * time.Second

// Service names used for boost commands.
const (
	climateDomain    = "climate"
	serviceSetPreset = "set_preset_mode"
	serviceSetTemp   = "set_temperature"
)

const (
	updateBuffer = 64
	intentBuffer = 8
)

var ErrUnmounted = errors.New("widget is not mounted")

// UpdateKind tells the consumer what changed.
type UpdateKind string

const (
	UpdateView      UpdateKind = "view"
	UpdateCountdown UpdateKind = "countdown"
	UpdateSignal    UpdateKind = "signal"
)

// Countdown is a countdown-only refresh of the boost control.
type Countdown struct {
	RemainingSeconds int    `json:"remaining_seconds"`
	Text             string `json:"text"`
}

// Update is one output of the widget.
type Update struct {
	Kind      UpdateKind
	View      card.View
	Countdown Countdown
	Signal    models.Signal
}

// Options configures a widget.
type Options struct {
	CardID         string
	Config         models.CardConfig
	Feed           hass.Feed
	Caller         hass.Caller
	Sink           signals.Sink // external signal delivery, may be nil
	Log            *logger.Logger
	CommandTimeout time.Duration

	// Now and NewTicker are overridable for tests.
	Now       func() time.Time
	NewTicker func(time.Duration) card.Ticker
}

type intentKind int

const (
	intentToggle intentKind = iota
	intentActivate
	intentDeactivate
	intentTap
)

type intent struct {
	kind           intentKind
	onBoostControl bool
}

type commandResult struct {
	intent     intentKind
	generation int
	err        error
}

// Widget is one mounted card instance.
type Widget struct {
	id      string
	opts    Options
	log     *logger.Logger
	now     func() time.Time
	card    *card.Card
	timer   *card.Countdown
	intents chan intent
	results chan commandResult
	updates chan Update
	done    chan struct{}

	// generation increments on every boost intent; a failing activation only
	// rolls back if nothing was requested after it.
	generation int
}

// New creates an unmounted widget; Run mounts it.
func New(opts Options) (*Widget, error) {
	cfg, err := opts.Config.Normalize()
	if err != nil {
		return nil, err
	}
	opts.Config = cfg
	if opts.Feed == nil || opts.Caller == nil {
		return nil, errors.New("widget needs a state feed and a command caller")
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = DefaultCommandTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	id := uuid.NewString()
	timer := card.NewCountdown(card.CountdownPeriod, opts.NewTicker)
	return &Widget{
		id:      id,
		opts:    opts,
		log:     opts.Log.Named("widget", "card", opts.CardID, "instance", id, "entity", cfg.Entity),
		now:     opts.Now,
		card:    card.New(cfg, timer),
		timer:   timer,
		intents: make(chan intent, intentBuffer),
		results: make(chan commandResult),
		updates: make(chan Update, updateBuffer),
		done:    make(chan struct{}),
	}, nil
}

func (w *Widget) ID() string { return w.id }

// Updates returns the output channel. It is never closed; use Done.
func (w *Widget) Updates() <-chan Update { return w.updates }

// Done is closed once the widget has been unmounted.
func (w *Widget) Done() <-chan struct{} { return w.done }

// ToggleBoost presses the boost control.
func (w *Widget) ToggleBoost() error { return w.send(intent{kind: intentToggle}) }

func (w *Widget) ActivateBoost() error { return w.send(intent{kind: intentActivate}) }

func (w *Widget) DeactivateBoost() error { return w.send(intent{kind: intentDeactivate}) }

// Tap reports a tap on the card body or, with onBoostControl, on the boost
// control.
func (w *Widget) Tap(onBoostControl bool) error {
	return w.send(intent{kind: intentTap, onBoostControl: onBoostControl})
}

func (w *Widget) send(in intent) error {
	select {
	case <-w.done:
		return ErrUnmounted
	default:
	}
	select {
	case w.intents <- in:
		return nil
	case <-w.done:
		return ErrUnmounted
	}
}

// Run mounts the widget and processes events until ctx is canceled. The
// countdown and the feed subscription are released when it returns.
func (w *Widget) Run(ctx context.Context) {
	watch := w.opts.Feed.Watch(w.opts.Config.Entity)
	defer func() {
		watch.Close()
		w.card.Unmount()
		close(w.done)
		w.log.Debugw("widget_unmounted")
	}()
	w.log.Debugw("widget_mounted", "kind", w.card.Kind().String())

	for {
		select {
		case <-ctx.Done():
			return
		case d := <-watch.C():
			if w.card.OnSnapshot(w.now(), d.Snapshot, d.Found) {
				w.publishView()
			}
		case in := <-w.intents:
			w.handleIntent(ctx, in)
		case res := <-w.results:
			w.handleResult(res)
		case <-w.timer.C():
			w.handleTick()
		}
	}
}

func (w *Widget) handleIntent(ctx context.Context, in intent) {
	switch in.kind {
	case intentTap:
		w.tap(ctx, in.onBoostControl)
		return
	case intentToggle:
		if w.card.Toggle() == card.IntentDeactivate {
			w.deactivate(ctx)
		} else {
			w.activate(ctx)
		}
	case intentActivate:
		w.activate(ctx)
	case intentDeactivate:
		w.deactivate(ctx)
	}
}

func (w *Widget) activate(ctx context.Context) {
	w.generation++
	req := w.card.ActivateBoost(w.now())
	w.publishView()

	gen := w.generation
	go func() {
		err := w.sendActivation(context.WithoutCancel(ctx), req)
		w.post(commandResult{intent: intentActivate, generation: gen, err: err})
	}()
}

// sendActivation switches the preset first; the temperature is only set once
// the device is in boost mode.
func (w *Widget) sendActivation(ctx context.Context, req card.BoostRequest) error {
	if err := w.call(ctx, serviceSetPreset, map[string]any{
		"entity_id":   req.EntityID,
		"preset_mode": card.PresetBoost,
	}); err != nil {
		return err
	}
	return w.call(ctx, serviceSetTemp, map[string]any{
		"entity_id":   req.EntityID,
		"temperature": req.Temperature,
	})
}

func (w *Widget) deactivate(ctx context.Context) {
	w.generation++
	w.card.DeactivateBoost()
	w.publishView()

	gen := w.generation
	entity := w.opts.Config.Entity
	go func() {
		err := w.call(context.WithoutCancel(ctx), serviceSetPreset, map[string]any{
			"entity_id":   entity,
			"preset_mode": card.PresetSchedule,
		})
		w.post(commandResult{intent: intentDeactivate, generation: gen, err: err})
	}()
}

func (w *Widget) call(ctx context.Context, service string, data map[string]any) error {
	cctx, cancel := context.WithTimeout(ctx, w.opts.CommandTimeout)
	defer cancel()
	if err := w.opts.Caller.CallService(cctx, climateDomain, service, data); err != nil {
		return fmt.Errorf("%s: %w", service, err)
	}
	return nil
}

// post hands a command result back to the loop, unless it has exited.
func (w *Widget) post(res commandResult) {
	select {
	case w.results <- res:
	case <-w.done:
	}
}

func (w *Widget) handleResult(res commandResult) {
	switch {
	case res.err == nil:
		w.log.Debugw("boost_command_done", "intent", res.intent)
	case res.intent == intentActivate:
		w.log.Warnw("boost_activate_failed", "err", res.err)
	default:
		w.log.Warnw("boost_deactivate_failed", "err", res.err)
	}
	if res.generation != w.generation {
		return
	}
	switch res.intent {
	case intentActivate:
		if res.err != nil {
			w.card.BoostFailed()
			w.publishView()
		}
	case intentDeactivate:
		// Either outcome ends the pending deactivation.
		if w.card.DeactivateResolved(w.now()) {
			w.publishView()
		}
	}
}

func (w *Widget) handleTick() {
	r := w.card.Tick(w.now())
	if r.Expired {
		w.publishView()
		return
	}
	w.publish(Update{Kind: UpdateCountdown, Countdown: Countdown{RemainingSeconds: r.Remaining, Text: r.Countdown}})
}

func (w *Widget) tap(ctx context.Context, onBoostControl bool) {
	for _, s := range w.card.Tap(onBoostControl) {
		s.Card = w.opts.CardID
		s.Instance = w.id
		s = signals.Stamp(s, w.now())
		w.publish(Update{Kind: UpdateSignal, Signal: s})
		w.emit(ctx, s)
	}
}

// emit delivers to the external sink without blocking the loop.
func (w *Widget) emit(ctx context.Context, s models.Signal) {
	if w.opts.Sink == nil {
		return
	}
	go func() {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.opts.CommandTimeout)
		defer cancel()
		if err := w.opts.Sink.Emit(cctx, s); err != nil {
			w.log.Infow("signal_emit_failed", "type", s.Type, "err", err)
		}
	}()
}

func (w *Widget) publishView() {
	w.publish(Update{Kind: UpdateView, View: w.card.View(w.now())})
}

// publish never blocks. When the consumer falls behind, countdown updates
// are dropped first and a view replaces every queued view, so the latest view
// is always delivered.
func (w *Widget) publish(u Update) {
	select {
	case w.updates <- u:
		return
	default:
	}
	if u.Kind == UpdateCountdown {
		w.log.Debugw("widget_update_dropped", "kind", u.Kind)
		return
	}
	w.compact(u.Kind == UpdateView)
	select {
	case w.updates <- u:
	default:
		w.log.Warnw("widget_update_dropped", "kind", u.Kind)
	}
}

// compact drains the queue and requeues signals and, unless superseded, the
// newest view. If that still fills the queue the oldest entry goes. Only the
// loop goroutine publishes, so the requeue cannot race another producer.
func (w *Widget) compact(viewSuperseded bool) {
	var (
		kept     []Update
		lastView = -1
		dropped  int
	)
drain:
	for n := len(w.updates); n > 0; n-- {
		var q Update
		select {
		case q = <-w.updates:
		default:
			break drain
		}
		switch {
		case q.Kind == UpdateSignal:
			kept = append(kept, q)
		case q.Kind == UpdateView && !viewSuperseded:
			if lastView >= 0 {
				kept = append(kept[:lastView], kept[lastView+1:]...)
				dropped++
			}
			lastView = len(kept)
			kept = append(kept, q)
		default:
			dropped++
		}
	}
	if len(kept) >= cap(w.updates) {
		kept = kept[1:]
		dropped++
	}
	for _, q := range kept {
		select {
		case w.updates <- q:
		default:
			dropped++
		}
	}
	w.log.Debugw("widget_updates_compacted", "dropped", dropped, "kept", len(kept))
}
