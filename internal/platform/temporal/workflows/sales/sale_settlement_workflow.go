package sales

import (
	"go.temporal.io/sdk/workflow"

	salestypes "github.com/DewinU/backend-DSI/internal/domains/sales/application/types"
	"github.com/DewinU/backend-DSI/internal/platform/temporal/sequences"
)

const (
	// SaleSettlementWorkflowName is the public identifier for registering the workflow.
	SaleSettlementWorkflowName = "sales.workflows.Settlement"
	// SaleSettlementTaskQueue is the queue consumed by the worker processing sale workflows.
	SaleSettlementTaskQueue = "SALE_SETTLEMENT"
)

// SaleSettlementWorkflowInput captures the payload required to settle a new sale.
type SaleSettlementWorkflowInput struct {
	Command salestypes.CreateSaleInput
	TraceID string
}

// SaleSettlementWorkflow orchestrates the activities needed to persist a sale
// and its stock movements.
func SaleSettlementWorkflow(ctx workflow.Context, input SaleSettlementWorkflowInput) (*salestypes.SaleProjection, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("SaleSettlementWorkflow started", withTraceID(input.TraceID, "items", len(input.Command.Items))...)
	projection, err := sequences.RunSaleSettlementSequence(ctx, input.Command)
	if err != nil {
		logger.Error("SaleSettlementWorkflow failed", withTraceID(input.TraceID, "error", err)...)
		return nil, err
	}
	if projection != nil && projection.Sale != nil {
		logger.Info("SaleSettlementWorkflow completed", withTraceID(input.TraceID, "saleId", projection.Sale.ID)...)
	} else {
		logger.Info("SaleSettlementWorkflow completed", withTraceID(input.TraceID)...)
	}
	return projection, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
