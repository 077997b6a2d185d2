// Package mailer publishes outbound email messages to RabbitMQ.
// Delivery is fire-and-forget: errors are logged and returned so
// callers can ignore failures without interrupting the main request
// flow.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/identity-access/internal/queue"
)

// QueueMailer publishes confirmation and reset emails to the
// email.outbound queue. ServiceURL is the externally reachable base
// URL embedded in the links sent to users.
type QueueMailer struct {
	URL        string // AMQP broker URL
	From       string // sender address shown to recipients
	ServiceURL string
}

func NewQueueMailer(url, from, serviceURL string) *QueueMailer {
	return &QueueMailer{URL: url, From: from, ServiceURL: serviceURL}
}

// SendConfirmation queues the registration-confirmation email. The
// link carries the purpose token as a query parameter.
func (m *QueueMailer) SendConfirmation(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/v1/auth/confirm?token=%s", m.ServiceURL, token)
	body := fmt.Sprintf(
		"Hello, %s. Thank you for choosing our software.\n"+
			"Click the link below to confirm your registration:\n\n%s\n\nBest regards.",
		to, link)
	return m.publish(ctx, queue.MailMessage{To: to, Subject: "Accept registration", Body: body})
}

// SendReset queues the password-reset email.
func (m *QueueMailer) SendReset(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/v1/auth/reset_password?token=%s", m.ServiceURL, token)
	body := fmt.Sprintf(
		"Hello, %s.\nClick the link below to reset your password:\n\n%s\n\nBest regards.",
		to, link)
	return m.publish(ctx, queue.MailMessage{To: to, Subject: "Reset password", Body: body})
}

// publish opens a short-lived connection, declares the durable queue
// (idempotent) and publishes the message as persistent. It never
// panics; any error is logged and returned.
func (m *QueueMailer) publish(ctx context.Context, msg queue.MailMessage) error {
	conn, err := amqp.Dial(m.URL)
	if err != nil {
		logrus.WithError(err).Warn("mailer: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logrus.WithError(err).Warn("mailer: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queue.MailQueueName, // name
		true,                // durable
		false,               // autoDelete
		false,               // exclusive
		false,               // noWait
		nil,                 // args
	); err != nil {
		logrus.WithError(err).Warn("mailer: queue declare failed")
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		logrus.WithError(err).Warn("mailer: marshal message failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",                  // default exchange
		queue.MailQueueName, // routing key = queue name
		false,               // mandatory
		false,               // immediate
		pub,
	); err != nil {
		logrus.WithError(err).Warn("mailer: publish failed")
		return err
	}
	return nil
}
