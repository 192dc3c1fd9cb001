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

type OrderItem struct {
	DishID   int     `json:"dishId"`
	DishName string  `json:"dishName"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Event mirrors the message tenant-svc publishes after a committed mutation.
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
