package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/rexrel213/music-store-finally/internal/barcode"
	"github.com/rexrel213/music-store-finally/internal/model"
	"github.com/rexrel213/music-store-finally/internal/repository"
)

const (
	orderQueueName = "orders"
	dlxExchange    = "orders.dlx"
	dlqQueueName   = "orders.dlq"
	idempotencyTTL = 24 * time.Hour
	barcodeSubdir  = "barcodes"
)

// BarcodeWorker consumes completed-order events and renders the EAN-13 image
// for each order into the static dir. Rendering is the only asynchronous part
// of checkout, the barcode value itself is assigned before the event is
// published.
type BarcodeWorker struct {
	channel     *amqp.Channel
	orderRepo   repository.OrderRepository
	redisClient *redis.Client
	staticDir   string
	log         *slog.Logger
	done        chan struct{}
}

func NewBarcodeWorker(
	ch *amqp.Channel,
	orderRepo repository.OrderRepository,
	redisClient *redis.Client,
	staticDir string,
	log *slog.Logger,
) *BarcodeWorker {
	return &BarcodeWorker{
		channel:     ch,
		orderRepo:   orderRepo,
		redisClient: redisClient,
		staticDir:   staticDir,
		log:         log,
		done:        make(chan struct{}),
	}
}

// SetupRabbitMQ declares exchanges, queues, and bindings (DLX/DLQ).
func SetupRabbitMQ(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(dlxExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(dlqQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlqQueueName, orderQueueName, dlxExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(orderQueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxExchange,
		"x-dead-letter-routing-key": orderQueueName,
	}); err != nil {
		return fmt.Errorf("declare order queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}

func (w *BarcodeWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(orderQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("barcode worker started")
	return nil
}

func (w *BarcodeWorker) Stop() { close(w.done) }

func (w *BarcodeWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var orderMsg model.OrderMessage
	if err := json.Unmarshal(msg.Body, &orderMsg); err != nil {
		w.log.Error("unmarshal order message", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("order_id", orderMsg.OrderID, "user_id", orderMsg.UserID)

	idempotencyKey := "barcode_rendered:" + orderMsg.OrderID.String()
	exists, err := w.redisClient.Exists(ctx, idempotencyKey).Result()
	if err != nil {
		log.Error("check idempotency key", "error", err)
		_ = msg.Nack(false, true)
		return
	}
	if exists > 0 {
		log.Info("barcode already rendered, skipping")
		_ = msg.Ack(false)
		return
	}

	if err := w.renderBarcode(ctx, orderMsg); err != nil {
		log.Error("render barcode failed", "error", err)
		_ = msg.Nack(false, false) // to DLQ
		return
	}

	if err := w.redisClient.Set(ctx, idempotencyKey, "1", idempotencyTTL).Err(); err != nil {
		log.Error("set idempotency key", "error", err)
	}

	_ = msg.Ack(false)
	log.Info("barcode rendered")
}

func (w *BarcodeWorker) renderBarcode(ctx context.Context, orderMsg model.OrderMessage) error {
	order, err := w.orderRepo.GetByID(ctx, orderMsg.OrderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return fmt.Errorf("order not found: %s", orderMsg.OrderID)
	}
	if order.Barcode == "" {
		return fmt.Errorf("order %s has no barcode value", orderMsg.OrderID)
	}

	fileName, err := barcode.Render(order.Barcode, filepath.Join(w.staticDir, barcodeSubdir))
	if err != nil {
		return fmt.Errorf("render image: %w", err)
	}

	rel := filepath.Join(barcodeSubdir, fileName)
	if err := w.orderRepo.SetBarcodeImage(ctx, order.ID, rel); err != nil {
		return fmt.Errorf("store image path: %w", err)
	}
	return nil
}
