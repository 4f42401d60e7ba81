package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tx      Transaction
		wantErr bool
		errMsg  string
	}{
		{
			name: "Valid transfer should pass",
			tx: Transaction{
				ID:           uuid.New(),
				Timestamp:    time.Now(),
				Type:         TransactionTypeTransfer,
				Amount:       decimal.NewFromInt(100),
				Description:  "Sent to Bob",
				BalanceAfter: decimal.NewFromInt(9900),
			},
			wantErr: false,
		},
		{
			name: "Zero balance after should pass",
			tx: Transaction{
				ID:           uuid.New(),
				Type:         TransactionTypeWithdraw,
				Amount:       decimal.NewFromInt(50),
				BalanceAfter: decimal.Zero,
			},
			wantErr: false,
		},
		{
			name: "Nil id should fail",
			tx: Transaction{
				Type:   TransactionTypeDeposit,
				Amount: decimal.NewFromInt(1),
			},
			wantErr: true,
			errMsg:  "transaction id cannot be empty",
		},
		{
			name: "Unknown type should fail",
			tx: Transaction{
				ID:     uuid.New(),
				Type:   TransactionType("REFUND"),
				Amount: decimal.NewFromInt(1),
			},
			wantErr: true,
			errMsg:  "transaction type is invalid",
		},
		{
			name: "Zero amount should fail",
			tx: Transaction{
				ID:     uuid.New(),
				Type:   TransactionTypeDeposit,
				Amount: decimal.Zero,
			},
			wantErr: true,
			errMsg:  "amount must be positive",
		},
		{
			name: "Negative balance after should fail",
			tx: Transaction{
				ID:           uuid.New(),
				Type:         TransactionTypeDeposit,
				Amount:       decimal.NewFromInt(1),
				BalanceAfter: decimal.NewFromInt(-1),
			},
			wantErr: true,
			errMsg:  "balance after cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransactionType_IsDebit(t *testing.T) {
	assert.True(t, TransactionTypeTransfer.IsDebit())
	assert.True(t, TransactionTypeWithdraw.IsDebit())
	assert.True(t, TransactionTypeInvest.IsDebit())
	assert.False(t, TransactionTypeDeposit.IsDebit())
	assert.False(t, TransactionTypeGainApplied.IsDebit())
}

func TestSentDescription(t *testing.T) {
	assert.Equal(t, "Sent to Bob Lee", SentDescription("Bob Lee", ""))
	assert.Equal(t, "Sent to Bob Lee - rent", SentDescription("Bob Lee", "rent"))
	assert.Equal(t, "Received from Ann - rent", ReceivedDescription("Ann", "rent"))
}

func TestParseSentDescription(t *testing.T) {
	tests := []struct {
		desc        string
		wantName    string
		wantMessage string
		wantOK      bool
	}{
		{"Sent to Bob Lee", "Bob Lee", "", true},
		{"Sent to Bob Lee - rent - march", "Bob Lee", "rent - march", true},
		{"Cash Deposit", "", "", false},
		{"Received from Ann", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			name, message, ok := ParseSentDescription(tt.desc)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantMessage, message)
		})
	}
}

func TestParseReceivedDescription(t *testing.T) {
	name, message, ok := ParseReceivedDescription("Received from Ann Lee - rent")
	assert.True(t, ok)
	assert.Equal(t, "Ann Lee", name)
	assert.Equal(t, "rent", message)

	_, _, ok = ParseReceivedDescription("Sent to Ann Lee")
	assert.False(t, ok)
}
