package orders

type Status string

const (
	StatusPending           Status = "PENDING"
	StatusPaymentProcessing Status = "PAYMENT_PROCESSING"
	StatusConfirmed         Status = "CONFIRMED"
	StatusPreparing         Status = "PREPARING"
	StatusOutForDelivery    Status = "OUT_FOR_DELIVERY"
	StatusDelivered         Status = "DELIVERED"
	StatusCompleted         Status = "COMPLETED"
	StatusCancelled         Status = "CANCELLED"

	StatusRideRequested Status = "RIDE_REQUESTED"
	StatusRideAccepted  Status = "RIDE_ACCEPTED"
	StatusRideStarted   Status = "RIDE_STARTED"
	StatusRideCompleted Status = "RIDE_COMPLETED"

	StatusRefundRequested Status = "REFUND_REQUESTED"
	StatusRefundApproved  Status = "REFUND_APPROVED"
	StatusRefundRejected  Status = "REFUND_REJECTED"
	StatusRefunded        Status = "REFUNDED"
)

// Orders only move forward; cancellation and refunds are the two branches
// that step out of the happy path. Empty set = terminal.
var validNext = map[Status]map[Status]bool{
	StatusPending:           {StatusPaymentProcessing: true, StatusConfirmed: true, StatusCancelled: true},
	StatusPaymentProcessing: {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:         {StatusPreparing: true, StatusRideRequested: true, StatusCancelled: true},
	StatusPreparing:         {StatusOutForDelivery: true, StatusCancelled: true},
	StatusOutForDelivery:    {StatusDelivered: true},
	StatusDelivered:         {StatusCompleted: true, StatusRefundRequested: true},
	StatusCompleted:         {StatusRefundRequested: true},
	StatusCancelled:         {},

	StatusRideRequested: {StatusRideAccepted: true, StatusCancelled: true},
	StatusRideAccepted:  {StatusRideStarted: true, StatusCancelled: true},
	StatusRideStarted:   {StatusRideCompleted: true},
	StatusRideCompleted: {StatusCompleted: true},

	StatusRefundRequested: {StatusRefundApproved: true, StatusRefundRejected: true},
	StatusRefundApproved:  {StatusRefunded: true},
	StatusRefundRejected:  {StatusCompleted: true},
	StatusRefunded:        {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func IsValid(s Status) bool {
	_, ok := validNext[s]
	return ok
}
