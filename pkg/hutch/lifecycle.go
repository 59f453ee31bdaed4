package hutch

import (
	"context"
	"log/slog"
	"time"
)

// processDelivery runs the full lifecycle for one delivery: invoke the handler
// under its timeout, then acknowledge on success or negatively acknowledge and
// dead-letter on failure. Acknowledgement happens exactly once per delivery.
func (con *Consumer) processDelivery(ctx context.Context, delivery Delivery) {
	started := time.Now()

	logger := con.logger.With(
		slog.String("queue", con.queueName),
		slog.String("messageId", delivery.MessageID()),
		slog.Uint64("deliveryTag", delivery.DeliveryTag()))

	logger.Debug("started processing delivery")

	err := con.invokeWithTimeout(ctx, delivery)

	wasAcked := false
	switch {
	case err == nil:
		if ackErr := delivery.Ack(); ackErr != nil {
			logger.Error("acking delivery failed", slog.Any("error", ackErr))
		} else {
			wasAcked = true
		}

	default:
		logger.Error("delivery handler failed", slog.Any("error", err))

		if nackErr := delivery.Nack(false); nackErr != nil {
			logger.Error("nacking delivery failed", slog.Any("error", nackErr))
			break
		}

		if !con.deadLettering || delivery.MessageID() == "" {
			break
		}

		record := NewErrorRecord(con.queueName, delivery, err)
		// Detached so a shutdown mid-drain can't drop failure records.
		if pubErr := con.publishError(context.WithoutCancel(ctx), record); pubErr != nil {
			logger.Error("publishing error record failed", slog.Any("error", pubErr))
		}
	}

	logger.Debug("finished processing delivery",
		slog.Duration("elapsed", time.Since(started)),
		slog.Bool("wasAcked", wasAcked))
}

// invokeWithTimeout runs the handler in its own goroutine and races it against
// the processing window. The handler context survives a consumer shutdown so
// draining never cancels work that already started; it only carries the
// deadline. An overrun handler is abandoned, not interrupted.
func (con *Consumer) invokeWithTimeout(ctx context.Context, delivery Delivery) error {
	timeout := con.timeout
	if timeout <= 0 {
		timeout = defaultHandlerTimeout
	}

	handlerCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		result <- con.handler.Invoke(handlerCtx, con.client, delivery)
	}()

	select {
	case err := <-result:
		return err
	case <-handlerCtx.Done():
		return &TimeoutError{After: timeout}
	}
}
