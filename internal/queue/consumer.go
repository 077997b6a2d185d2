// Package queue contains the background consumer that listens to the
// email.outbound queue and delivers queued messages over SMTP.
package queue

import (
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// SMTPConfig carries the delivery settings for the mail consumer.
// When Host is empty the consumer runs in dry-run mode and only logs
// each message, which keeps local development free of an SMTP server.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// StartMailConsumer connects to RabbitMQ, declares the email.outbound
// queue (durable), and starts consuming messages. The function runs a
// reconnect loop with exponential backoff and keeps running on
// processing errors, rejecting the offending message so the server
// continues operating.
func StartMailConsumer(url string, smtpCfg SMTPConfig) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logrus.WithError(err).Warnf("mail-consumer: failed to dial broker; retrying in %s", backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, smtpCfg); err != nil {
			logrus.WithError(err).Warn("mail-consumer: consume loop ended; reconnecting")
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, smtpCfg SMTPConfig) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logrus.WithError(err).Warn("mail-consumer: set QoS failed")
	}

	if _, err := ch.QueueDeclare(MailQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(MailQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := deliver(d.Body, smtpCfg); err != nil {
			logrus.WithError(err).Warn("mail-consumer: deliver failed")
			_ = d.Nack(false, false) // drop; mail is best-effort
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

func deliver(body []byte, cfg SMTPConfig) error {
	var msg MailMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("unmarshal mail message: %w", err)
	}
	if cfg.Host == "" {
		logrus.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).
			Info("mail-consumer: dry-run, SMTP not configured")
		return nil
	}
	payload := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		cfg.From, msg.To, msg.Subject, msg.Body)
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	return smtp.SendMail(cfg.Host+":"+cfg.Port, auth, cfg.From, []string{msg.To}, []byte(payload))
}
