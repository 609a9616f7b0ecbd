package permission

import (
	"errors"
	"fmt"
)

// Endpoint names a protected admin console resource.
type Endpoint string

const (
	EndpointBookings            Endpoint = "bookings"
	EndpointBookingStatus       Endpoint = "booking-status"
	EndpointBookingCancellation Endpoint = "booking-cancellation"
	EndpointRooms               Endpoint = "rooms"
	EndpointRoomTypes           Endpoint = "room-types"
	EndpointStaff               Endpoint = "staff"
	EndpointPackages            Endpoint = "packages"
	EndpointPayments            Endpoint = "payments"
	EndpointRoles               Endpoint = "roles"
)

var Endpoints = []Endpoint{
	EndpointBookings,
	EndpointBookingStatus,
	EndpointBookingCancellation,
	EndpointRooms,
	EndpointRoomTypes,
	EndpointStaff,
	EndpointPackages,
	EndpointPayments,
	EndpointRoles,
}

var ErrUnknownEndpoint = errors.New("unknown endpoint")

func ParseEndpoint(s string) (Endpoint, error) {
	for _, e := range Endpoints {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEndpoint, s)
}

type Capability string

const (
	CapRead   Capability = "read"
	CapCreate Capability = "create"
	CapUpdate Capability = "update"
	CapDelete Capability = "delete"
)

// Record is the CRUD capability set of the current actor on one endpoint.
type Record struct {
	Endpoint  Endpoint `json:"endpoint"`
	CanRead   bool     `json:"canRead"`
	CanCreate bool     `json:"canCreate"`
	CanUpdate bool     `json:"canUpdate"`
	CanDelete bool     `json:"canDelete"`
}

// Denied is the fail-closed record.
func Denied(e Endpoint) Record {
	return Record{Endpoint: e}
}

func (r Record) Allows(c Capability) bool {
	switch c {
	case CapRead:
		return r.CanRead
	case CapCreate:
		return r.CanCreate
	case CapUpdate:
		return r.CanUpdate
	case CapDelete:
		return r.CanDelete
	default:
		return false
	}
}

// Table is the full capability mapping for one resolved role context.
type Table map[Endpoint]Record
