package order

// OrderState implements the state pattern for order lifecycle transitions:
//
//	processing -> confirmed -> shipped -> delivered
//	processing -> cancelled
type OrderState interface {
	Status() Status
	On(target Status) (OrderState, error)
}

type processingState struct{}

func (processingState) Status() Status { return StatusProcessing }

func (processingState) On(target Status) (OrderState, error) {
	switch target {
	case StatusConfirmed:
		return confirmedState{}, nil
	case StatusCancelled:
		return cancelledState{}, nil
	}
	return nil, ErrInvalidStateTransition
}

type confirmedState struct{}

func (confirmedState) Status() Status { return StatusConfirmed }

func (confirmedState) On(target Status) (OrderState, error) {
	if target == StatusShipped {
		return shippedState{}, nil
	}
	return nil, ErrInvalidStateTransition
}

type shippedState struct{}

func (shippedState) Status() Status { return StatusShipped }

func (shippedState) On(target Status) (OrderState, error) {
	if target == StatusDelivered {
		return deliveredState{}, nil
	}
	return nil, ErrInvalidStateTransition
}

type deliveredState struct{}

func (deliveredState) Status() Status { return StatusDelivered }

func (deliveredState) On(Status) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

type cancelledState struct{}

func (cancelledState) Status() Status { return StatusCancelled }

func (cancelledState) On(Status) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func stateFor(s Status) OrderState {
	switch s {
	case StatusConfirmed:
		return confirmedState{}
	case StatusShipped:
		return shippedState{}
	case StatusDelivered:
		return deliveredState{}
	case StatusCancelled:
		return cancelledState{}
	default:
		return processingState{}
	}
}
