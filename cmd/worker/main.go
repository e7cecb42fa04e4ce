package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bmi-service/config"
	"github.com/oksasatya/bmi-service/internal/application"
	"github.com/oksasatya/bmi-service/internal/infrastructure/search"
	"github.com/oksasatya/bmi-service/pkg/helpers"
	"github.com/oksasatya/bmi-service/pkg/mailer"
)

// Worker consumes the events queue: welcome emails for new accounts and
// search indexing for new measurements.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-worker", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventsQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	h := &application.EventHandler{AppName: cfg.AppName, Logger: logger}
	if cfg.MailSendEnabled {
		mg, err := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
		switch {
		case errors.Is(err, mailer.ErrNotConfigured):
			logger.Warn("Mailgun not configured; welcome emails disabled")
		case err != nil:
			log.Fatalf("mailgun: %v", err)
		default:
			h.Mailer = mg
		}
	} else {
		logger.Info("MAIL_SEND_ENABLED=false; no real emails will be sent")
	}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("elasticsearch: %v", err)
	}
	if es != nil {
		h.Indexer = search.NewBMIIndex(es, cfg.ESBMIIndex)
	} else {
		logger.Info("ELASTICSEARCH_ADDRS not set; indexing disabled")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQEventsQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}
	msgs, err := ch.Consume(cfg.RabbitMQEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		consume(ctx, msgs, h, logger)
		close(done)
	}()

	logger.WithField("queue", cfg.RabbitMQEventsQueue).Info("worker listening")
	if err := waitForShutdown(ctx, done, 2*time.Second); err != nil {
		// exit non-zero so the supervisor restarts us
		log.Fatalf("worker stopped: %v", err)
	}
	logger.Info("worker exited")
}

var errDeliveriesClosed = errors.New("delivery channel closed")

// waitForShutdown blocks until a signal or until the consumer stops on its
// own. The latter means the broker connection or channel went away.
func waitForShutdown(ctx context.Context, done <-chan struct{}, grace time.Duration) error {
	select {
	case <-done:
		if ctx.Err() == nil {
			return errDeliveriesClosed
		}
		return nil
	case <-ctx.Done():
	}
	select {
	case <-done:
	case <-time.After(grace):
	}
	return nil
}

// consume handles deliveries until msgs closes or ctx is done. Malformed
// events are dropped; anything else is requeued.
func consume(ctx context.Context, msgs <-chan amqp.Delivery, h *application.EventHandler, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := h.Handle(c, msg.Body)
			cancel()
			switch {
			case err == nil:
				_ = msg.Ack(false)
			case errors.Is(err, application.ErrBadEvent):
				logger.WithError(err).Warn("dropping bad message")
				_ = msg.Nack(false, false)
			default:
				logger.WithError(err).Warn("handle failed; requeueing")
				_ = msg.Nack(false, true)
			}
		}
	}
}
