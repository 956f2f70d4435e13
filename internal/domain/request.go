package domain

import "time"

// RequestType enumerates the fixed solicitud categories.
type RequestType string

const (
	RequestTypeExam     RequestType = "Examen"
	RequestTypeCourses  RequestType = "Cursos"
	RequestTypeSupplies RequestType = "Dotación"
	RequestTypeOther    RequestType = "Otros"
)

// Valid reports whether the type is one of the fixed categories.
func (t RequestType) Valid() bool {
	switch t {
	case RequestTypeExam, RequestTypeCourses, RequestTypeSupplies, RequestTypeOther:
		return true
	}
	return false
}

// Status enumerates lifecycle states shared by the solicitud and orden sides.
type Status string

const (
	StatusPending  Status = "Pendiente"
	StatusApproved Status = "Aprobada"
	StatusVoided   Status = "Anulada"
)

// Valid reports whether the status is a member of the enumeration.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusVoided:
		return true
	}
	return false
}

// Request is the aggregate for a solicitud/orden record. The solicitud and
// orden sides each carry an independent tracking number and status on the
// same row.
type Request struct {
	ID            int64
	Employee      string
	Type          RequestType
	RequestNumber *string
	RequestStatus Status
	OrderNumber   *string
	OrderStatus   Status
	CreatedBy     string
	UpdatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
