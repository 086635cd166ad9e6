package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Notifier delivers a rendered notification (e-mail, SMS, console).
type Notifier interface {
	Notify(subject, message string) error
}

// ConsoleNotifier logs notifications instead of sending them.
type ConsoleNotifier struct{}

func NewConsole() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (c *ConsoleNotifier) Notify(subject, message string) error {
	log.Printf("[notify] %s :: %s", subject, message)
	return nil
}

type ConsumerConfig struct {
	URL      string
	Exchange string
	Queue    string
	Prefetch int
}

// Consumer reads notification messages from a queue bound to every notify.* key.
type Consumer struct {
	cfg      ConsumerConfig
	notifier Notifier

	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewConsumer(cfg ConsumerConfig, n Notifier) *Consumer {
	return &Consumer{cfg: cfg, notifier: n}
}

func (c *Consumer) Connect() error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("rabbit dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel failed: %w", err)
	}

	fail := func(format string, err error) error {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf(format, err)
	}

	if err := ch.ExchangeDeclare(c.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("declare exchange failed: %w", err)
	}
	q, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return fail("declare queue failed: %w", err)
	}
	if err := ch.QueueBind(q.Name, "notify.#", c.cfg.Exchange, false, nil); err != nil {
		return fail("bind queue failed: %w", err)
	}

	if c.cfg.Prefetch <= 0 {
		c.cfg.Prefetch = 8
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fail("set qos failed: %w", err)
	}

	c.conn = conn
	c.ch = ch
	return nil
}

func (c *Consumer) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Run consumes until ctx is cancelled or the channel closes.
// Undecodable messages are dropped; notifier failures are requeued.
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume failed: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			requeue, err := c.handle(d.RoutingKey, d.Body)
			if err != nil {
				log.Printf("[notify] handle error key=%s err=%v requeue=%t", d.RoutingKey, err, requeue)
				_ = d.Nack(false, requeue)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(key string, body []byte) (requeue bool, err error) {
	if !strings.HasPrefix(key, "notify.") {
		log.Printf("[notify] skip unknown key=%s", key)
		return false, nil
	}
	m, err := decode(body)
	if err != nil {
		return false, err
	}
	subject, text := Render(m)
	if err := c.notifier.Notify(subject, text); err != nil {
		return true, err
	}
	return false, nil
}
