package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusPending   TripStatus = "pending"
	TripStatusAccepted  TripStatus = "accepted"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

// TripStatusOngoing is accepted as a query alias for TripStatusAccepted.
const TripStatusOngoing = "ongoing"

// Valid reports whether s is a known trip status.
func (s TripStatus) Valid() bool {
	switch s {
	case TripStatusPending, TripStatusAccepted, TripStatusCompleted, TripStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s TripStatus) Terminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// DurationUnit is the unit of Trip.Duration.
type DurationUnit string

const (
	DurationUnitHours DurationUnit = "hours"
	DurationUnitDays  DurationUnit = "days"
)

// Valid reports whether u is a known duration unit.
func (u DurationUnit) Valid() bool {
	return u == DurationUnitHours || u == DurationUnitDays
}

// TripType describes the route shape of a booking.
type TripType string

const (
	TripTypeOneWay    TripType = "one-way"
	TripTypeRound     TripType = "round"
	TripTypeMultiCity TripType = "multi-city"
)

// Valid reports whether t is a known trip type.
func (t TripType) Valid() bool {
	switch t {
	case TripTypeOneWay, TripTypeRound, TripTypeMultiCity:
		return true
	}
	return false
}

// CarType is the vehicle class requested for a trip.
type CarType string

const (
	CarTypeSedan       CarType = "sedan"
	CarTypeSUV         CarType = "suv"
	CarTypeMPV         CarType = "mpv"
	CarTypeLuxurySedan CarType = "luxury sedan"
	CarTypeLuxurySUV   CarType = "luxury suv"
	CarTypeTraveller   CarType = "traveller"
	CarTypeUrbania     CarType = "urbania"
	CarTypeBus         CarType = "bus"
)

// Valid reports whether c is a known car type.
func (c CarType) Valid() bool {
	switch c {
	case CarTypeSedan, CarTypeSUV, CarTypeMPV, CarTypeLuxurySedan,
		CarTypeLuxurySUV, CarTypeTraveller, CarTypeUrbania, CarTypeBus:
		return true
	}
	return false
}

// CommissionState tracks the platform commission on a trip.
type CommissionState string

const (
	CommissionStateReceived    CommissionState = "received"
	CommissionStateTransferred CommissionState = "transferred"
)

// Trip is a booking listed by a vendor and fulfilled by a driver.
// DriverID, PaymentID and CommissionState stay empty until the trip is accepted.
type Trip struct {
	ID              string
	VendorID        string
	DriverID        string
	PickupLocation  string
	DropoffLocation string
	PickupDate      time.Time
	PickupTime      time.Time
	Duration        float64
	DurationUnit    DurationUnit
	TripType        TripType
	Fare            float64
	Commission      float64
	CommissionState CommissionState
	PaymentID       string
	CarType         CarType
	CarName         string
	Additional      string
	VerifyCode      string
	Status          TripStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// VendorSummary is the public vendor profile attached to trip listings.
type VendorSummary struct {
	ID           string
	FullName     string
	MobileNumber string
	Avatar       string
}

// TripWithVendor is a trip joined with its vendor. Vendor is nil when the
// vendor record no longer exists.
type TripWithVendor struct {
	Trip   *Trip
	Vendor *VendorSummary
}
