package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/messmonitor/internal/middleware"
	"github.com/mmynk/messmonitor/internal/models"
	"github.com/mmynk/messmonitor/internal/storage"
	"github.com/mmynk/messmonitor/pkg/api"
)

// FundService implements the FundService RPC interface.
type FundService struct {
	funds  storage.FundStore
	logger *slog.Logger
}

// NewFundService creates a new fund service.
func NewFundService(funds storage.FundStore, logger *slog.Logger) *FundService {
	return &FundService{funds: funds, logger: logger}
}

func validateTransaction(t *models.FundTransaction) error {
	if !t.Type.Valid() {
		return invalidArgument("invalid transaction type %q", t.Type)
	}
	if t.Amount <= 0 {
		return invalidArgument("amount must be positive")
	}
	if strings.TrimSpace(t.Date) == "" {
		return invalidArgument("date is required")
	}
	return nil
}

// ListTransactions returns every transaction, newest first.
func (s *FundService) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	if _, err := middleware.RequireUser(ctx); err != nil {
		return nil, err
	}

	transactions, err := s.funds.ListTransactions(ctx)
	if err != nil {
		return nil, storeError(s.logger, "Failed to list transactions", err)
	}
	return connect.NewResponse(&api.ListTransactionsResponse{Transactions: transactions}), nil
}

// AddTransaction records income or an expense. Admin only.
func (s *FundService) AddTransaction(ctx context.Context, req *connect.Request[api.AddTransactionRequest]) (*connect.Response[api.TransactionResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	t := req.Msg.Transaction
	s.logger.Info("AddTransaction request received", "type", t.Type, "amount", t.Amount)

	if err := validateTransaction(&t); err != nil {
		return nil, err
	}
	t.ID = ""

	if err := s.funds.AddTransaction(ctx, &t); err != nil {
		return nil, storeError(s.logger, "Failed to add transaction", err)
	}

	s.logger.Info("Transaction added", "transaction_id", t.ID)
	return connect.NewResponse(&api.TransactionResponse{Transaction: &t}), nil
}

// UpdateTransaction applies a partial update. Admin only.
func (s *FundService) UpdateTransaction(ctx context.Context, req *connect.Request[api.UpdateTransactionRequest]) (*connect.Response[api.TransactionResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	id := req.Msg.ID
	s.logger.Info("UpdateTransaction request received", "transaction_id", id)

	if id == "" {
		return nil, invalidArgument("id is required")
	}

	t, err := s.funds.GetTransaction(ctx, id)
	if err != nil {
		return nil, storeError(s.logger, "Failed to get transaction", err, "transaction_id", id)
	}
	req.Msg.Update.Apply(t)
	if err := validateTransaction(t); err != nil {
		return nil, err
	}

	if err := s.funds.UpdateTransaction(ctx, id, req.Msg.Update); err != nil {
		return nil, storeError(s.logger, "Failed to update transaction", err, "transaction_id", id)
	}
	return connect.NewResponse(&api.TransactionResponse{Transaction: t}), nil
}

// DeleteTransaction removes a transaction. Admin only.
func (s *FundService) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	id := req.Msg.ID
	s.logger.Info("DeleteTransaction request received", "transaction_id", id)

	if id == "" {
		return nil, invalidArgument("id is required")
	}
	if err := s.funds.DeleteTransaction(ctx, id); err != nil {
		return nil, storeError(s.logger, "Failed to delete transaction", err, "transaction_id", id)
	}
	return connect.NewResponse(&api.DeleteTransactionResponse{}), nil
}
