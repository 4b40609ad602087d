package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/danielBingham/communities-sub006/internal/domain"
	"github.com/danielBingham/communities-sub006/internal/port"
)

// DeliveryStatus records the outcome of one (recipient, channel) unit.
type DeliveryStatus string

const (
	StatusDelivered DeliveryStatus = "delivered"
	StatusFailed    DeliveryStatus = "failed"
	StatusSkipped   DeliveryStatus = "skipped"
)

// Delivery is the per-unit record inside a DispatchResult. Reason is set for
// failed and skipped units.
type Delivery struct {
	RecipientID string         `json:"recipientId"`
	Channel     Channel        `json:"channel"`
	Status      DeliveryStatus `json:"status"`
	Reason      string         `json:"reason,omitempty"`
}

// DispatchResult aggregates every delivery unit of one dispatch.
type DispatchResult struct {
	Key        string     `json:"key"`
	Deliveries []Delivery `json:"deliveries"`
}

// Count returns how many units ended in status.
func (r *DispatchResult) Count(status DeliveryStatus) int {
	n := 0
	for _, d := range r.Deliveries {
		if d.Status == status {
			n++
		}
	}
	return n
}

// Sinks groups the delivery collaborators a Dispatcher fans out to. Any sink
// may be nil; units for an unconfigured channel are skipped, not failed.
type Sinks struct {
	Email    port.EmailSender
	Store    port.NotificationStore
	Push     port.PushSender
	Realtime port.RealtimePublisher
	Mutes    port.MuteStore
}

// DispatcherOptions configures the Dispatcher.
type DispatcherOptions struct {
	// MaxInFlight bounds concurrent delivery units. Default 8.
	MaxInFlight int
	// RecipientPerMinute rate-limits dispatches per recipient. 0 disables.
	RecipientPerMinute int
}

// DefaultDispatcherOptions returns sensible defaults.
func DefaultDispatcherOptions() DispatcherOptions {
	return DispatcherOptions{
		MaxInFlight:        8,
		RecipientPerMinute: 30,
	}
}

// Dispatcher resolves an event key against the registry, renders every
// applicable channel, and fans rendered payloads out to the delivery
// collaborators. Units of work are isolated: one failing delivery never
// blocks or fails its siblings.
type Dispatcher struct {
	registry *Registry
	sinks    Sinks
	opts     DispatcherOptions
	limiter  *recipientLimiter
	logger   *slog.Logger
	now      func() time.Time
}

func NewDispatcher(registry *Registry, sinks Sinks, opts DispatcherOptions, logger *slog.Logger) *Dispatcher {
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 8
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		registry: registry,
		sinks:    sinks,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
	if opts.RecipientPerMinute > 0 {
		d.limiter = newRecipientLimiter(opts.RecipientPerMinute)
	}
	return d
}

// Start launches background housekeeping. Non-blocking; returns when ctx is
// already done or immediately after spawning.
func (d *Dispatcher) Start(ctx context.Context) {
	if d.limiter == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.limiter.Evict(time.Hour)
			}
		}
	}()
}

// Dispatch looks up key, renders each channel the recipients care about, and
// hands payloads to the sinks with bounded concurrency. A missing definition
// fails the whole dispatch with *UnknownKeyError; everything after that is
// recorded per unit in the result and never propagated as an error.
//
// Cancelling ctx stops new units from being issued; units already in flight
// run to completion or failure on their own.
func (d *Dispatcher) Dispatch(ctx context.Context, key string, tctx Context, recipients []domain.Recipient) (*DispatchResult, error) {
	def, err := d.registry.Resolve(key)
	if err != nil {
		unknownKeysTotal.Inc()
		d.logger.Error("notification key is not registered", "key", key)
		return nil, err
	}

	result := &DispatchResult{Key: key}
	var mu sync.Mutex
	record := func(rcpt domain.Recipient, ch Channel, status DeliveryStatus, reason string) {
		mu.Lock()
		result.Deliveries = append(result.Deliveries, Delivery{
			RecipientID: rcpt.ID,
			Channel:     ch,
			Status:      status,
			Reason:      reason,
		})
		mu.Unlock()
		deliveriesTotal.WithLabelValues(string(ch), string(status)).Inc()
	}

	var g errgroup.Group
	g.SetLimit(d.opts.MaxInFlight)

	for _, rcpt := range recipients {
		muted := d.isMuted(ctx, def, rcpt)
		limited := d.limiter != nil && !d.limiter.Allow(rcpt.ID)

		for _, ch := range Channels() {
			if !def.HasChannel(ch) {
				record(rcpt, ch, StatusSkipped, "definition has no template for channel")
				continue
			}
			if !rcpt.HasChannel(string(ch)) {
				record(rcpt, ch, StatusSkipped, "channel disabled by recipient")
				continue
			}
			if muted {
				record(rcpt, ch, StatusSkipped, "muted by recipient")
				continue
			}
			if limited {
				record(rcpt, ch, StatusSkipped, "recipient rate limited")
				continue
			}
			if ctx.Err() != nil {
				record(rcpt, ch, StatusSkipped, "dispatch canceled")
				continue
			}
			rcpt, ch := rcpt, ch
			g.Go(func() error {
				d.deliver(ctx, def, tctx, rcpt, ch, record)
				return nil
			})
		}
	}

	_ = g.Wait()

	d.logger.Info("dispatched notification",
		"key", key,
		"recipients", len(recipients),
		"delivered", result.Count(StatusDelivered),
		"failed", result.Count(StatusFailed),
		"skipped", result.Count(StatusSkipped),
	)
	return result, nil
}

func (d *Dispatcher) isMuted(ctx context.Context, def *CompiledDefinition, rcpt domain.Recipient) bool {
	if d.sinks.Mutes == nil || def.MuteKey == "" {
		return false
	}
	muted, err := d.sinks.Mutes.IsMuted(ctx, rcpt.ID, def.MuteKey)
	if err != nil {
		// Prefer delivering over dropping when the mute store is unreachable.
		d.logger.Warn("mute lookup failed", "recipient", rcpt.ID, "error", err)
		return false
	}
	return muted
}

type recordFunc func(rcpt domain.Recipient, ch Channel, status DeliveryStatus, reason string)

func (d *Dispatcher) deliver(ctx context.Context, def *CompiledDefinition, tctx Context, rcpt domain.Recipient, ch Channel, record recordFunc) {
	start := time.Now()
	defer func() {
		deliveryDuration.WithLabelValues(string(ch)).Observe(time.Since(start).Seconds())
	}()

	switch ch {
	case ChannelEmail:
		d.deliverEmail(ctx, def, tctx, rcpt, record)
	case ChannelWeb:
		d.deliverWeb(ctx, def, tctx, rcpt, record)
	case ChannelMobile:
		d.deliverMobile(ctx, def, tctx, rcpt, record)
	}
}

func (d *Dispatcher) deliverEmail(ctx context.Context, def *CompiledDefinition, tctx Context, rcpt domain.Recipient, record recordFunc) {
	if d.sinks.Email == nil {
		record(rcpt, ChannelEmail, StatusSkipped, "email sink not configured")
		return
	}
	if rcpt.Email == "" {
		record(rcpt, ChannelEmail, StatusSkipped, "recipient has no email address")
		return
	}
	msg := port.EmailMessage{
		To:      rcpt.Email,
		Subject: def.Email.Subject.Render(tctx),
		Body:    def.Email.Body.Render(tctx),
	}
	if err := d.sinks.Email.Send(ctx, msg); err != nil {
		d.logger.Error("email delivery failed", "recipient", rcpt.ID, "error", err)
		record(rcpt, ChannelEmail, StatusFailed, err.Error())
		return
	}
	record(rcpt, ChannelEmail, StatusDelivered, "")
}

func (d *Dispatcher) deliverWeb(ctx context.Context, def *CompiledDefinition, tctx Context, rcpt domain.Recipient, record recordFunc) {
	if d.sinks.Store == nil {
		record(rcpt, ChannelWeb, StatusSkipped, "notification store not configured")
		return
	}
	n := &domain.Notification{
		ID:          uuid.NewString(),
		RecipientID: rcpt.ID,
		Text:        def.Web.Text.Render(tctx),
		Path:        def.Web.Path.Render(tctx),
		CreatedAt:   d.now().UTC(),
	}
	if err := d.sinks.Store.Save(ctx, n); err != nil {
		d.logger.Error("web delivery failed", "recipient", rcpt.ID, "error", err)
		record(rcpt, ChannelWeb, StatusFailed, err.Error())
		return
	}
	// Live push is best effort; the feed entry is already durable.
	if d.sinks.Realtime != nil {
		ev := port.RealtimeEvent{RecipientID: rcpt.ID, Event: "notification", Payload: n}
		if err := d.sinks.Realtime.Publish(ctx, ev); err != nil {
			d.logger.Warn("realtime publish failed", "recipient", rcpt.ID, "error", err)
		}
	}
	record(rcpt, ChannelWeb, StatusDelivered, "")
}

func (d *Dispatcher) deliverMobile(ctx context.Context, def *CompiledDefinition, tctx Context, rcpt domain.Recipient, record recordFunc) {
	if d.sinks.Push == nil {
		record(rcpt, ChannelMobile, StatusSkipped, "push sink not configured")
		return
	}
	if len(rcpt.DeviceTokens) == 0 {
		record(rcpt, ChannelMobile, StatusSkipped, "recipient has no registered device")
		return
	}
	title := def.Mobile.Title.Render(tctx)
	body := def.Mobile.Body.Render(tctx)
	for _, token := range rcpt.DeviceTokens {
		msg := port.PushMessage{DeviceToken: token, Title: title, Body: body}
		if err := d.sinks.Push.Send(ctx, msg); err != nil {
			d.logger.Error("push delivery failed", "recipient", rcpt.ID, "error", err)
			record(rcpt, ChannelMobile, StatusFailed, err.Error())
			return
		}
	}
	record(rcpt, ChannelMobile, StatusDelivered, "")
}
