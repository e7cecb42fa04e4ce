package application

import (
	"context"
	"expvar"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bmi-service/internal/domain/entity"
)

const (
	EventUserRegistered = "user.registered"
	EventBMIRecorded    = "bmi.recorded"
)

var (
	metricUsersRegistered = expvar.NewInt("users_registered")
	metricLoginsFailed    = expvar.NewInt("logins_failed")
	metricBMICreated      = expvar.NewInt("bmi_records_created")
)

// EventPublisher is satisfied by helpers.RabbitPublisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// BMIEvent carries the record plus its owner id, which the public JSON omits.
type BMIEvent struct {
	entity.BMIView
	UserID int64 `json:"user_id,omitempty"`
}

// Event is the message body put on the events queue.
type Event struct {
	Type       string           `json:"type"`
	OccurredAt time.Time        `json:"occurred_at"`
	User       *entity.UserView `json:"user,omitempty"`
	BMI        *BMIEvent        `json:"bmi,omitempty"`
}

// publish is best effort: the row is already committed, so a broker
// failure is logged and swallowed.
func publish(ctx context.Context, pub EventPublisher, logger *logrus.Logger, evt Event) {
	if pub == nil {
		return
	}
	evt.OccurredAt = time.Now().UTC()
	if err := pub.PublishJSON(ctx, evt); err != nil && logger != nil {
		logger.WithError(err).WithField("event", evt.Type).Warn("publish event failed")
	}
}
