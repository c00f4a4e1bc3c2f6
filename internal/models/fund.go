package models

// TransactionType is the direction of a fund transaction.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// FundTransaction is one entry in the mess fund.
type FundTransaction struct {
	// ID is the document id (UUID format).
	ID string `json:"id"`

	// Date is the calendar date of the transaction.
	Date string `json:"date"`

	Type TransactionType `json:"type"`

	// Amount is always positive; Type carries the sign.
	Amount float64 `json:"amount"`

	// FromTo names the payer for income or the payee for expenses.
	FromTo string `json:"fromTo"`

	Purpose string `json:"purpose"`

	// TrxID is an optional external payment reference.
	TrxID string `json:"trxId,omitempty"`

	// Timestamp is the server-assigned creation sequence.
	Timestamp int64 `json:"timestamp"`
}

// TransactionUpdate is a partial update of a fund transaction.
type TransactionUpdate struct {
	Date    *string          `json:"date,omitempty"`
	Type    *TransactionType `json:"type,omitempty"`
	Amount  *float64         `json:"amount,omitempty"`
	FromTo  *string          `json:"fromTo,omitempty"`
	Purpose *string          `json:"purpose,omitempty"`
	TrxID   *string          `json:"trxId,omitempty"`
}

// Apply copies the set fields of upd onto t.
func (upd TransactionUpdate) Apply(t *FundTransaction) {
	if upd.Date != nil {
		t.Date = *upd.Date
	}
	if upd.Type != nil {
		t.Type = *upd.Type
	}
	if upd.Amount != nil {
		t.Amount = *upd.Amount
	}
	if upd.FromTo != nil {
		t.FromTo = *upd.FromTo
	}
	if upd.Purpose != nil {
		t.Purpose = *upd.Purpose
	}
	if upd.TrxID != nil {
		t.TrxID = *upd.TrxID
	}
}
