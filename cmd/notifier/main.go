package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/nekogravitycat/wellness-booking-backend/internal/notify"
)

type Cfg struct {
	AMQPURL      string `envconfig:"AMQP_URL" required:"true"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"wellness.notifications"`
	AMQPQueue    string `envconfig:"AMQP_QUEUE" default:"wellness.notifications.console"`
	Prefetch     int    `envconfig:"AMQP_PREFETCH" default:"8"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	var cfg Cfg
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	consumer := notify.NewConsumer(notify.ConsumerConfig{
		URL:      cfg.AMQPURL,
		Exchange: cfg.AMQPExchange,
		Queue:    cfg.AMQPQueue,
		Prefetch: cfg.Prefetch,
	}, notify.NewConsole())
	if err := consumer.Connect(); err != nil {
		log.Fatalf("failed to connect consumer: %v", err)
	}
	defer consumer.Close()

	log.Printf("[notifier] consuming %s from %s", cfg.AMQPQueue, cfg.AMQPExchange)
	if err := consumer.Run(ctx); err != nil {
		log.Fatalf("consumer stopped: %v", err)
	}
	log.Println("[notifier] exited gracefully")
}
