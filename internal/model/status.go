package model

// RequestStatus status of a repair request, derived from its latest tracking row
type RequestStatus string

const (
	RequestPending    RequestStatus = "Pending"
	RequestApproved   RequestStatus = "Approved"
	RequestRejected   RequestStatus = "Rejected"
	RequestInProgress RequestStatus = "InProgress"
	RequestCompleted  RequestStatus = "Completed"
	RequestCancelled  RequestStatus = "Cancelled"
)

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:    {RequestApproved, RequestRejected, RequestCancelled},
	RequestApproved:   {RequestInProgress, RequestCancelled},
	RequestInProgress: {RequestCompleted, RequestCancelled},
}

// CanTransitionTo reports whether next is reachable from s in one step
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	return contains(requestTransitions[s], next)
}

// IsTerminal no further transition is allowed
func (s RequestStatus) IsTerminal() bool { return len(requestTransitions[s]) == 0 }

// Valid reports whether s is a known request status
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected, RequestInProgress, RequestCompleted, RequestCancelled:
		return true
	}
	return false
}

// AppointmentStatus status of an appointment, derived from its latest tracking row
type AppointmentStatus string

const (
	AppointmentPending            AppointmentStatus = "Pending"
	AppointmentAssigned           AppointmentStatus = "Assigned"
	AppointmentConfirmed          AppointmentStatus = "Confirmed"
	AppointmentInVisit            AppointmentStatus = "InVisit"
	AppointmentAwaitingIRApproval AppointmentStatus = "AwaitingIRApproval"
	AppointmentInRepair           AppointmentStatus = "InRepair"
	AppointmentCompleted          AppointmentStatus = "Completed"
	AppointmentCancelled          AppointmentStatus = "Cancelled"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentPending:            {AppointmentAssigned, AppointmentCancelled},
	AppointmentAssigned:           {AppointmentConfirmed, AppointmentPending, AppointmentCancelled},
	AppointmentConfirmed:          {AppointmentInVisit, AppointmentCancelled},
	AppointmentInVisit:            {AppointmentAwaitingIRApproval, AppointmentInRepair, AppointmentCompleted},
	AppointmentAwaitingIRApproval: {AppointmentInVisit, AppointmentInRepair, AppointmentCompleted},
	AppointmentInRepair:           {AppointmentCompleted},
}

// CanTransitionTo reports whether next is reachable from s in one step
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	return contains(appointmentTransitions[s], next)
}

// IsTerminal no further transition is allowed
func (s AppointmentStatus) IsTerminal() bool { return len(appointmentTransitions[s]) == 0 }

// Valid reports whether s is a known appointment status
func (s AppointmentStatus) Valid() bool {
	_, ok := appointmentTransitions[s]
	return ok || s == AppointmentCompleted || s == AppointmentCancelled
}

// WorkOrderStatus status of a technician's assignment to an appointment
type WorkOrderStatus string

const (
	WorkOrderPending   WorkOrderStatus = "Pending"
	WorkOrderWorking   WorkOrderStatus = "Working"
	WorkOrderCompleted WorkOrderStatus = "Completed"
)

var workOrderTransitions = map[WorkOrderStatus][]WorkOrderStatus{
	WorkOrderPending: {WorkOrderWorking},
	WorkOrderWorking: {WorkOrderCompleted},
}

// CanTransitionTo reports whether next is reachable from s in one step
func (s WorkOrderStatus) CanTransitionTo(next WorkOrderStatus) bool {
	return contains(workOrderTransitions[s], next)
}

// Cancellable only work orders nobody has started may be cancelled
func (s WorkOrderStatus) Cancellable() bool { return s == WorkOrderPending }

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
