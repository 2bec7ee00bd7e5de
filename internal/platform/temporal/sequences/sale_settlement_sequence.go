package sequences

import (
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	salestypes "github.com/DewinU/backend-DSI/internal/domains/sales/application/types"
	saleactivities "github.com/DewinU/backend-DSI/internal/platform/temporal/activities/sales"
)

// RunSaleSettlementSequence executes the ordered set of activities needed to
// persist a sale aggregate and debit its stock.
func RunSaleSettlementSequence(ctx workflow.Context, input salestypes.CreateSaleInput) (*salestypes.SaleProjection, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("sale settlement sequence started", "items", len(input.Items))

	persistOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	// Without an idempotency key a retried persist could debit stock twice,
	// so the activity gets exactly one attempt.
	if strings.TrimSpace(input.IdempotencyKey) == "" {
		persistOptions.RetryPolicy.MaximumAttempts = 1
	}

	var projection salestypes.SaleProjection
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, persistOptions), saleactivities.PersistSaleActivityName, input).Get(ctx, &projection)
	if err != nil {
		logger.Error("sale settlement sequence failed", "error", err)
		return nil, err
	}
	if projection.Sale != nil {
		logger.Info("sale settlement sequence persisted", "saleId", projection.Sale.ID)
	} else {
		logger.Info("sale settlement sequence persisted")
	}
	return &projection, nil
}
