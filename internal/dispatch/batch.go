package dispatch

import (
	"context"

	"tailor-sms-dispatch/internal/domain"
)

// SendBatch drives Send across the recipients strictly sequentially.
// Commodity devices serialize or throttle outbound SMS, so concurrent
// dispatch risks silent drops; sequential execution trades throughput for
// a clean one-to-one result mapping.
//
// Each recipient's failure is isolated into its own failed SendResult, so
// one bad entry never aborts the rest. The returned slice has the same
// length and order as recipients, and the batch call itself never fails.
func (d *Dispatcher) SendBatch(ctx context.Context, recipients []domain.SendRequest) []domain.SendResult {
	results := make([]domain.SendResult, 0, len(recipients))
	for _, req := range recipients {
		res, err := d.Send(ctx, req)
		if err != nil {
			d.log.Warn("batch item failed",
				"customer_id", req.CustomerID,
				"err", err)
		}
		results = append(results, res)
	}
	return results
}

// Summarize counts the successful results of a batch.
func Summarize(results []domain.SendResult) (succeeded, failed int) {
	for _, r := range results {
		if r.Success {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
