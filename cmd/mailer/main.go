/**
 * @description
 * Main entry point for the mailer worker. It consumes email.requested
 * events from the message broker and delivers them through AWS SES. A
 * failed delivery is nacked back onto the queue, so the broker drives
 * retries; the API process never blocks on email transport.
 */
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bhupen98/dhukuti/internal/app"
	"github.com/bhupen98/dhukuti/internal/config"
	"github.com/bhupen98/dhukuti/internal/domain"
	"github.com/bhupen98/dhukuti/internal/mailer"
	"github.com/bhupen98/dhukuti/pkg/rabbitmq"
)

// sendTimeout bounds a single SES call so a slow delivery cannot stall the
// queue indefinitely.
const sendTimeout = 30 * time.Second

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	sender, err := mailer.NewSESSender(
		context.Background(),
		cfg.AWSRegion,
		cfg.AWSAccessKeyID,
		cfg.AWSSecretAccessKey,
		cfg.SenderEmail,
		cfg.SenderName,
	)
	if err != nil {
		log.Fatalf("Failed to initialize SES sender: %v", err)
	}

	consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer consumer.Close()
	log.Println("RabbitMQ consumer connected")

	bindings := map[string]func([]byte) bool{
		app.RoutingKeyEmailRequested: func(body []byte) bool {
			var event domain.EmailRequestedEvent
			if err := json.Unmarshal(body, &event); err != nil {
				log.Printf("Dropping malformed email event: %v", err)
				return true // unparseable; requeueing would loop forever
			}

			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()

			if err := sender.Send(ctx, &event); err != nil {
				log.Printf("Failed to send email to %s: %v", event.Recipient, err)
				return false
			}
			return true
		},
	}

	if err := consumer.ConsumeWithBindings(app.EmailExchange, cfg.EmailQueue, bindings); err != nil {
		log.Fatalf("Failed to start consuming: %v", err)
	}
	log.Printf("Mailer worker consuming queue %s", cfg.EmailQueue)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down mailer worker...")
}
