package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"strategystore/internal/repository"
	"strategystore/internal/service"
	"strategystore/pkg/config"

	logrus "github.com/sirupsen/logrus"
)

func main() {
	settings, err := config.Load(os.Getenv("STRATEGY_CONFIG_FILE"))
	if err != nil {
		logrus.Fatal("Failed to load config: ", err)
	}
	config.InitLogger(settings.Log)

	if !settings.DB.Enabled() || !settings.RabbitMQ.Enabled() {
		logrus.Fatal("worker needs both db.host and rabbitmq.host")
	}

	db, err := config.InitDB(settings.DB)
	if err != nil {
		logrus.Fatal(err)
	}

	conn, err := config.InitRabbitMQ(settings.RabbitMQ)
	if err != nil {
		logrus.Fatal(err)
	}
	defer conn.Close()

	msgConsumer, err := config.NewConsumer(conn, settings.RabbitMQ.EventsQueue)
	if err != nil {
		logrus.Fatal("Failed to create consumer: ", err)
	}
	defer msgConsumer.Close()

	recorder := service.NewEventRecorder(repository.NewStrategyEventRepository(db), 10*time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logrus.Info("strategy event worker started, waiting for messages...")
	if err := msgConsumer.Consume(ctx, recorder.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logrus.Errorf("consumer stopped: %v", err)
	}
}
