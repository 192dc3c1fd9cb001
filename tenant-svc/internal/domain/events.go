package domain

import "time"

const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
	EventReservationCreated = "reservation_created"
	EventRatingApproved     = "rating_approved"
	EventRatingHidden       = "rating_hidden"
	EventRestaurantDeleted  = "restaurant_deleted"
)

// Event is the message published to the events topic after a committed
// mutation. Only the fields relevant to Type are set.
type Event struct {
	Type         string      `json:"type"`
	RestaurantID int         `json:"restaurantId"`
	OrderID      int         `json:"orderId,omitempty"`
	Status       string      `json:"status,omitempty"`
	Total        float64     `json:"total,omitempty"`
	Items        []OrderItem `json:"items,omitempty"`
	RatingID     int         `json:"ratingId,omitempty"`
	Rating       int         `json:"rating,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
}
