package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/messmonitor/internal/models"
)

const FundServiceName = "FundService"

const (
	FundServiceListTransactionsProcedure  = "/" + Package + "." + FundServiceName + "/ListTransactions"
	FundServiceAddTransactionProcedure    = "/" + Package + "." + FundServiceName + "/AddTransaction"
	FundServiceUpdateTransactionProcedure = "/" + Package + "." + FundServiceName + "/UpdateTransaction"
	FundServiceDeleteTransactionProcedure = "/" + Package + "." + FundServiceName + "/DeleteTransaction"
)

type ListTransactionsRequest struct{}

type ListTransactionsResponse struct {
	Transactions []models.FundTransaction `json:"transactions"`
}

// AddTransactionRequest carries a new transaction. ID and Timestamp are
// assigned by the server.
type AddTransactionRequest struct {
	Transaction models.FundTransaction `json:"transaction"`
}

type TransactionResponse struct {
	Transaction *models.FundTransaction `json:"transaction"`
}

type UpdateTransactionRequest struct {
	ID     string                   `json:"id"`
	Update models.TransactionUpdate `json:"update"`
}

type DeleteTransactionRequest struct {
	ID string `json:"id"`
}

type DeleteTransactionResponse struct{}

type FundServiceHandler interface {
	ListTransactions(context.Context, *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error)
	AddTransaction(context.Context, *connect.Request[AddTransactionRequest]) (*connect.Response[TransactionResponse], error)
	UpdateTransaction(context.Context, *connect.Request[UpdateTransactionRequest]) (*connect.Response[TransactionResponse], error)
	DeleteTransaction(context.Context, *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error)
}

func NewFundServiceHandler(svc FundServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	s := newServiceMux(FundServiceName, opts)
	unary(s, FundServiceListTransactionsProcedure, svc.ListTransactions)
	unary(s, FundServiceAddTransactionProcedure, svc.AddTransaction)
	unary(s, FundServiceUpdateTransactionProcedure, svc.UpdateTransaction)
	unary(s, FundServiceDeleteTransactionProcedure, svc.DeleteTransaction)
	return s.handler()
}

type FundServiceClient struct {
	listTransactions  *connect.Client[ListTransactionsRequest, ListTransactionsResponse]
	addTransaction    *connect.Client[AddTransactionRequest, TransactionResponse]
	updateTransaction *connect.Client[UpdateTransactionRequest, TransactionResponse]
	deleteTransaction *connect.Client[DeleteTransactionRequest, DeleteTransactionResponse]
}

func NewFundServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *FundServiceClient {
	return &FundServiceClient{
		listTransactions:  newClient[ListTransactionsRequest, ListTransactionsResponse](httpClient, baseURL, FundServiceListTransactionsProcedure, opts),
		addTransaction:    newClient[AddTransactionRequest, TransactionResponse](httpClient, baseURL, FundServiceAddTransactionProcedure, opts),
		updateTransaction: newClient[UpdateTransactionRequest, TransactionResponse](httpClient, baseURL, FundServiceUpdateTransactionProcedure, opts),
		deleteTransaction: newClient[DeleteTransactionRequest, DeleteTransactionResponse](httpClient, baseURL, FundServiceDeleteTransactionProcedure, opts),
	}
}

func (c *FundServiceClient) ListTransactions(ctx context.Context, req *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

func (c *FundServiceClient) AddTransaction(ctx context.Context, req *connect.Request[AddTransactionRequest]) (*connect.Response[TransactionResponse], error) {
	return c.addTransaction.CallUnary(ctx, req)
}

func (c *FundServiceClient) UpdateTransaction(ctx context.Context, req *connect.Request[UpdateTransactionRequest]) (*connect.Response[TransactionResponse], error) {
	return c.updateTransaction.CallUnary(ctx, req)
}

func (c *FundServiceClient) DeleteTransaction(ctx context.Context, req *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error) {
	return c.deleteTransaction.CallUnary(ctx, req)
}
