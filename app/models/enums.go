package models

// Term defines the three fixed sub-periods of an academic year.
type Term string

const (
	TermOne   Term = "Term 1"
	TermTwo   Term = "Term 2"
	TermThree Term = "Term 3"
)

// ValidTerm reports whether t is one of the three known terms.
func ValidTerm(t Term) bool {
	switch t {
	case TermOne, TermTwo, TermThree:
		return true
	}
	return false
}

// TransactionKind defines the possible kinds of ledger entries.
type TransactionKind string

const (
	KindPayment    TransactionKind = "payment"
	KindAdjustment TransactionKind = "adjustment"
	KindFine       TransactionKind = "fine"
	KindRefund     TransactionKind = "refund"
	KindOpening    TransactionKind = "opening"
)

// ValidTransactionKind reports whether k is a known ledger entry kind.
func ValidTransactionKind(k TransactionKind) bool {
	switch k {
	case KindPayment, KindAdjustment, KindFine, KindRefund, KindOpening:
		return true
	}
	return false
}

// PaymentMethod defines how a payment was made.
type PaymentMethod string

const (
	MethodCash        PaymentMethod = "cash"
	MethodMobileMoney PaymentMethod = "mobile_money"
	MethodBank        PaymentMethod = "bank"
	MethodCheque      PaymentMethod = "cheque"
	MethodSystem      PaymentMethod = "system"
)

// Gender defines the possible gender values for a student.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
	Other  Gender = "other"
)
