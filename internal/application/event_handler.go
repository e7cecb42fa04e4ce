package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	mailtpl "github.com/oksasatya/bmi-service/pkg/mailer/templates"
)

// ErrBadEvent marks a message that can never be processed; the worker drops it.
var ErrBadEvent = errors.New("bad event")

// Mailer is satisfied by mailer.Mailgun.
type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// BMIIndexer is satisfied by search.BMIIndex.
type BMIIndexer interface {
	IndexBMI(ctx context.Context, evt BMIEvent) error
}

// EventHandler reacts to queued domain events. Nil Mailer or Indexer
// disables that side of the pipeline.
type EventHandler struct {
	Mailer  Mailer
	Indexer BMIIndexer
	AppName string
	Logger  *logrus.Logger
}

func (h *EventHandler) Handle(ctx context.Context, body []byte) error {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("%w: %v", ErrBadEvent, err)
	}
	switch evt.Type {
	case EventUserRegistered:
		if evt.User == nil || evt.User.Email == "" {
			return fmt.Errorf("%w: user payload missing", ErrBadEvent)
		}
		if h.Mailer == nil {
			return nil
		}
		subject, text, html, err := mailtpl.RenderWelcome(mailtpl.WelcomeData{
			AppName: h.AppName,
			Name:    evt.User.Name,
			Email:   evt.User.Email,
		})
		if err != nil {
			return fmt.Errorf("%w: render welcome: %v", ErrBadEvent, err)
		}
		if err := h.Mailer.Send(ctx, evt.User.Email, subject, text, html); err != nil {
			return fmt.Errorf("send welcome email: %w", err)
		}
		h.log().WithField("user_id", evt.User.ID).Info("welcome email sent")
		return nil
	case EventBMIRecorded:
		if evt.BMI == nil || evt.BMI.ID == 0 {
			return fmt.Errorf("%w: bmi payload missing", ErrBadEvent)
		}
		if h.Indexer == nil {
			return nil
		}
		if err := h.Indexer.IndexBMI(ctx, *evt.BMI); err != nil {
			return fmt.Errorf("index bmi %d: %w", evt.BMI.ID, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", ErrBadEvent, evt.Type)
	}
}

func (h *EventHandler) log() *logrus.Logger {
	if h.Logger == nil {
		return logrus.StandardLogger()
	}
	return h.Logger
}
