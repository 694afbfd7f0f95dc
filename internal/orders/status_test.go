package orders

import "testing"

func TestCanTransition_HappyPath(t *testing.T) {
	chain := []Status{
		StatusPending, StatusPaymentProcessing, StatusConfirmed,
		StatusPreparing, StatusOutForDelivery, StatusDelivered, StatusCompleted,
	}
	for i := 0; i < len(chain)-1; i++ {
		if !CanTransition(chain[i], chain[i+1]) {
			t.Errorf("expected %s -> %s to be valid", chain[i], chain[i+1])
		}
	}
}

func TestCanTransition_RideFlow(t *testing.T) {
	chain := []Status{
		StatusConfirmed, StatusRideRequested, StatusRideAccepted,
		StatusRideStarted, StatusRideCompleted, StatusCompleted,
	}
	for i := 0; i < len(chain)-1; i++ {
		if !CanTransition(chain[i], chain[i+1]) {
			t.Errorf("expected %s -> %s to be valid", chain[i], chain[i+1])
		}
	}
}

func TestCanTransition_RefundBranch(t *testing.T) {
	if !CanTransition(StatusDelivered, StatusRefundRequested) {
		t.Error("delivered order should be refundable")
	}
	if !CanTransition(StatusRefundRequested, StatusRefundApproved) ||
		!CanTransition(StatusRefundApproved, StatusRefunded) {
		t.Error("refund approval chain should be valid")
	}
	if !CanTransition(StatusRefundRejected, StatusCompleted) {
		t.Error("rejected refund should return the order to completed")
	}
}

func TestCanTransition_Invalid(t *testing.T) {
	cases := []struct{ from, to Status }{
		{StatusDelivered, StatusRideAccepted},
		{StatusDelivered, StatusPending},
		{StatusCompleted, StatusOutForDelivery},
		{StatusCancelled, StatusConfirmed}, // terminal
		{StatusRefunded, StatusPending},    // terminal
		{StatusPending, StatusDelivered},   // skip tidak boleh
	}
	for _, c := range cases {
		if CanTransition(c.from, c.to) {
			t.Errorf("expected %s -> %s to be invalid", c.from, c.to)
		}
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid(StatusPending) || !IsValid(StatusRefunded) {
		t.Error("known statuses should be valid")
	}
	if IsValid(Status("SHIPPED")) {
		t.Error("unknown status should be invalid")
	}
}
