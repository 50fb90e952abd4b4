package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TripStatus string

const (
	TripStatusPending    TripStatus = "PENDING"
	TripStatusAssigned   TripStatus = "ASSIGNED"
	TripStatusInProgress TripStatus = "IN_PROGRESS"
	TripStatusCompleted  TripStatus = "COMPLETED"
	TripStatusCancelled  TripStatus = "CANCELLED"
)

type TripType string

const (
	TripTypeOneway    TripType = "ONEWAY"
	TripTypeRoundTrip TripType = "ROUND_TRIP"
	TripTypeHourly    TripType = "HOURLY"
)

type Order struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID        primitive.ObjectID `json:"owner_id" bson:"owner_id" validate:"required"`
	TripStatus     TripStatus         `json:"trip_status" bson:"trip_status"`
	TripType       TripType           `json:"trip_type" bson:"trip_type" validate:"required"`
	CustomerName   string             `json:"customer_name" bson:"customer_name"`
	CustomerNumber string             `json:"customer_number" bson:"customer_number" validate:"omitempty,phone"`
	PickupLocation string             `json:"pickup_location" bson:"pickup_location" validate:"required"`
	DropLocation   string             `json:"drop_location" bson:"drop_location"`
	PickupTime     *time.Time         `json:"pickup_time" bson:"pickup_time"`
	CarType        string             `json:"car_type" bson:"car_type"`
	EstimatedKM    int64              `json:"estimated_km" bson:"estimated_km"`
	TripTime       string             `json:"trip_time" bson:"trip_time"`
	CostPerKM      float64            `json:"cost_per_km" bson:"cost_per_km" validate:"gte=0"`
	ExtraCostPerKM float64            `json:"extra_cost_per_km" bson:"extra_cost_per_km"`
	BaseFare       float64            `json:"base_fare" bson:"base_fare"`
	DriverAllowance float64           `json:"driver_allowance" bson:"driver_allowance"`
	PermitCharges  float64            `json:"permit_charges" bson:"permit_charges"`
	HillCharges    float64            `json:"hill_charges" bson:"hill_charges"`
	TollCharges    float64            `json:"toll_charges" bson:"toll_charges"`
	// EstimatedPrice, when set, is the quoted total recorded at order
	// creation and takes precedence over re-deriving the itemized sum.
	EstimatedPrice float64 `json:"estimated_price" bson:"estimated_price"`
	// VendorPrice, when set, is the owner-negotiated flat price for
	// the whole trip and overrides the estimated price.
	VendorPrice *float64 `json:"vendor_price" bson:"vendor_price"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// TotalAmount is the trip's quoted total: the vendor override when
// present, else the recorded estimated price, else the itemized sum
// over the estimated distance.
func (o *Order) TotalAmount() float64 {
	if o.VendorPrice != nil {
		return *o.VendorPrice
	}
	if o.EstimatedPrice > 0 {
		return o.EstimatedPrice
	}
	perKM := o.CostPerKM + o.ExtraCostPerKM
	return o.BaseFare + o.DriverAllowance + o.PermitCharges + o.HillCharges + o.TollCharges + float64(o.EstimatedKM)*perKM
}

// PerKMPrice is the effective fare rate used for settlement: the quoted
// total spread over the estimated distance, so fixed charges and vendor
// negotiation both price the recorded kilometers. An order without a
// distance estimate falls back to the bare per-km cost.
func (o *Order) PerKMPrice() float64 {
	if o.EstimatedKM > 0 {
		return o.TotalAmount() / float64(o.EstimatedKM)
	}
	return o.CostPerKM
}
