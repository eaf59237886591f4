package store

import (
	"testing"

	"github.com/reckon/reckon-api/internal/domain"
)

func TestBalanceDelta(t *testing.T) {
	tests := []struct {
		txType domain.TransactionType
		amount int64
		want   int64
	}{
		{domain.TransactionExpense, 12000, -12000},
		{domain.TransactionLend, 500, -500},
		{domain.TransactionBorrow, 500, 500},
		{domain.TransactionReceived, 2500, 2500},
	}
	for _, tc := range tests {
		if got := balanceDelta(tc.txType, tc.amount); got != tc.want {
			t.Errorf("balanceDelta(%s, %d) = %d, want %d", tc.txType, tc.amount, got, tc.want)
		}
	}
}

func TestDuplicateField(t *testing.T) {
	tests := []struct {
		constraint string
		want       string
	}{
		{"users_email_key", "email"},
		{"users_phone_number_key", "phoneNumber"},
		{"", "email"},
	}
	for _, tc := range tests {
		if got := duplicateField(tc.constraint); got != tc.want {
			t.Errorf("duplicateField(%q) = %q, want %q", tc.constraint, got, tc.want)
		}
	}
}
