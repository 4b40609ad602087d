package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	natspkg "github.com/nats-io/nats.go"

	"github.com/danielBingham/communities-sub006/internal/notification"
	"github.com/danielBingham/communities-sub006/internal/port"
)

// Envelope is the wire shape business services publish when they raise a
// notification event.
type Envelope struct {
	Key          string         `json:"key" validate:"required"`
	Context      map[string]any `json:"context"`
	RecipientIDs []string       `json:"recipientIds" validate:"required,min=1,dive,required"`
}

// Subscriber consumes dispatch envelopes off NATS and drives the dispatcher.
type Subscriber struct {
	client     *Client
	dispatcher *notification.Dispatcher
	recipients port.RecipientRepository
	baseURL    string
	validate   *validator.Validate
	logger     *slog.Logger
}

func NewSubscriber(client *Client, dispatcher *notification.Dispatcher, recipients port.RecipientRepository, baseURL string, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{
		client:     client,
		dispatcher: dispatcher,
		recipients: recipients,
		baseURL:    baseURL,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Start subscribes on subject. Handler errors are logged; a malformed or
// unresolvable envelope is dropped rather than redelivered, since neither
// gets better with retries.
func (s *Subscriber) Start(subject string) (*natspkg.Subscription, error) {
	sub, err := s.client.Subscribe(subject, s.handle)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	s.logger.Info("subscribed to notification events", "subject", subject)
	return sub, nil
}

func (s *Subscriber) handle(data []byte) error {
	ctx := context.Background()

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Error("dropping malformed notification envelope", "error", err)
		return err
	}
	if err := s.validate.Struct(env); err != nil {
		s.logger.Error("dropping invalid notification envelope", "error", err)
		return err
	}

	tctx := notification.Context(env.Context)
	if tctx == nil {
		tctx = notification.Context{}
	}
	if _, ok := tctx["host"]; !ok {
		tctx["host"] = s.baseURL
	}

	recipients, err := s.recipients.FindByIDs(ctx, env.RecipientIDs)
	if err != nil {
		s.logger.Error("recipient lookup failed", "key", env.Key, "error", err)
		return err
	}

	result, err := s.dispatcher.Dispatch(ctx, env.Key, tctx, recipients)
	if err != nil {
		var unknown *notification.UnknownKeyError
		if errors.As(err, &unknown) {
			s.logger.Error("dropping envelope for unregistered key", "key", env.Key)
			return err
		}
		return err
	}

	s.logger.Debug("processed notification envelope",
		"key", env.Key,
		"delivered", result.Count(notification.StatusDelivered),
		"failed", result.Count(notification.StatusFailed),
	)
	return nil
}
