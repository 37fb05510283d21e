package models

import "time"

// StatusChange is one entry of a service order's audit trail.
type StatusChange struct {
	ID          string        `bson:"id" json:"id"`
	OrderID     string        `bson:"order_id" json:"orderId"`
	OrderNumber string        `bson:"order_number" json:"orderNumber"`
	Event       string        `bson:"event" json:"event"`
	FromStatus  OrderStatus   `bson:"from_status" json:"fromStatus"`
	Via         OrderStatus   `bson:"via,omitempty" json:"via,omitempty"`
	ToStatus    OrderStatus   `bson:"to_status" json:"toStatus"`
	Actor       ActorSnapshot `bson:"actor" json:"actor"`
	Note        string        `bson:"note,omitempty" json:"note,omitempty"`
	Version     int64         `bson:"version" json:"version"`
	CreatedAt   time.Time     `bson:"created_at" json:"createdAt"`
}
