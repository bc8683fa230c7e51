package order

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusDelivered  Status = "DELIVERED"
	StatusReturned   Status = "RETURNED"
	StatusCanceled   Status = "CANCELED"
)

// transitions is the complete set of legal status moves. Anything absent is an
// invalid transition; Delivered, Returned and Canceled accept no further
// moves.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCanceled},
	StatusProcessing: {StatusDelivered, StatusReturned, StatusCanceled},
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

func CanTransition(from Status, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
