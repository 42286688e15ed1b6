// Package service holds side effects triggered by the booking workflow
// that are not part of the transactional write path.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/cinebook/cinebook/internal/queue"
)

// PublishBookingEvent publishes a booking lifecycle event to the durable
// booking.events queue.  Failures are logged and returned; callers fire
// this after commit and deliberately ignore the error, since a lost event
// must never fail a booking that is already persisted.
func PublishBookingEvent(ctx context.Context, event queue.BookingEvent) error {
	conn, err := amqp.Dial(queue.BrokerURL())
	if err != nil {
		logrus.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logrus.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(queue.BookingQueueName, true, false, false, false, nil); err != nil {
		logrus.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Warn("rabbitmq: marshal event failed")
		return err
	}

	err = ch.PublishWithContext(ctx, "", queue.BookingQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		logrus.WithError(err).Warn("rabbitmq: publish failed")
	}
	return err
}
