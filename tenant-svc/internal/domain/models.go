package domain

import "time"

type RestaurantStatus string

const (
	RestaurantActive    RestaurantStatus = "active"
	RestaurantSuspended RestaurantStatus = "suspended"
	RestaurantExpired   RestaurantStatus = "expired"
)

func (s RestaurantStatus) Valid() bool {
	switch s {
	case RestaurantActive, RestaurantSuspended, RestaurantExpired:
		return true
	}
	return false
}

type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

type ReservationSettings struct {
	StartTime          string `json:"startTime"`
	EndTime            string `json:"endTime"`
	SlotDuration       int    `json:"slotDuration"`
	MaxGuests          int    `json:"maxGuests"`
	IsEnabled          bool   `json:"isEnabled"`
	AdvanceBookingDays int    `json:"advanceBookingDays"`
}

type Restaurant struct {
	ID                  int                  `json:"id"`
	Name                string               `json:"name"`
	Slug                string               `json:"slug"`
	Logo                string               `json:"logo"`
	CoverImage          string               `json:"coverImage,omitempty"`
	PlanID              int                  `json:"planId"`
	Status              RestaurantStatus     `json:"status"`
	Address             string               `json:"address"`
	Phone               string               `json:"phone"`
	Email               string               `json:"email,omitempty"`
	Currency            string               `json:"currency"`
	ThemeColor          string               `json:"themeColor"`
	FontFamily          string               `json:"fontFamily"`
	SocialLinks         []SocialLink         `json:"socialLinks"`
	ReservationSettings *ReservationSettings `json:"reservationSettings,omitempty"`
	CreatedAt           time.Time            `json:"createdAt"`
}

type Category struct {
	ID           int    `json:"id"`
	RestaurantID int    `json:"restaurantId"`
	Name         string `json:"name"`
	NameEn       string `json:"nameEn"`
	SortOrder    int    `json:"sortOrder"`
}

type Dish struct {
	ID              int      `json:"id"`
	RestaurantID    int      `json:"restaurantId"`
	CategoryID      int      `json:"categoryId"`
	Name            string   `json:"name"`
	NameEn          string   `json:"nameEn"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	Image           string   `json:"image"`
	IsAvailable     bool     `json:"isAvailable"`
	PreparationTime int      `json:"preparationTime"`
	Allergens       []string `json:"allergens,omitempty"`
}

type OrderItem struct {
	DishID   int     `json:"dishId"`
	DishName string  `json:"dishName"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type Order struct {
	ID            int         `json:"id"`
	RestaurantID  int         `json:"restaurantId"`
	OrderNumber   string      `json:"orderNumber"`
	CustomerName  string      `json:"customerName"`
	CustomerPhone string      `json:"customerPhone"`
	Total         float64     `json:"total"`
	Status        OrderStatus `json:"status"`
	Items         []OrderItem `json:"items"`
	CreatedAt     time.Time   `json:"createdAt"`
}

type Reservation struct {
	ID            int               `json:"id"`
	RestaurantID  int               `json:"restaurantId"`
	CustomerName  string            `json:"customerName"`
	CustomerPhone string            `json:"customerPhone"`
	Date          string            `json:"date"`
	Time          string            `json:"time"`
	Guests        int               `json:"guests"`
	Status        ReservationStatus `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
}

type Rating struct {
	ID           int       `json:"id"`
	RestaurantID int       `json:"restaurantId"`
	DishID       *int      `json:"dishId,omitempty"`
	CustomerName string    `json:"customerName"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	IsApproved   bool      `json:"isApproved"`
	CreatedAt    time.Time `json:"createdAt"`
}

type PlatformSettings struct {
	SiteName          string `json:"siteName"`
	SupportEmail      string `json:"supportEmail"`
	SupportPhone      string `json:"supportPhone"`
	FacebookURL       string `json:"facebookUrl"`
	TwitterURL        string `json:"twitterUrl"`
	InstagramURL      string `json:"instagramUrl"`
	FooterText        string `json:"footerText"`
	IsMaintenanceMode bool   `json:"isMaintenanceMode"`
}

func DefaultPlatformSettings() PlatformSettings {
	return PlatformSettings{
		SiteName:   "SOP",
		FooterText: "All rights reserved",
	}
}

// Menu is the customer-facing view of a tenant.
type Menu struct {
	Restaurant Restaurant `json:"restaurant"`
	Categories []Category `json:"categories"`
	Dishes     []Dish     `json:"dishes"`
}

type Summary struct {
	OrdersToday         int     `json:"ordersToday"`
	PendingOrders       int     `json:"pendingOrders"`
	CompletedRevenue    float64 `json:"completedRevenue"`
	PendingReservations int     `json:"pendingReservations"`
	AverageRating       float64 `json:"averageRating"`
	ApprovedRatings     int     `json:"approvedRatings"`
	Dishes              int     `json:"dishes"`
	MaxDishes           int     `json:"maxDishes"`
}

type DishScore struct {
	DishID   int     `json:"dishId"`
	Quantity float64 `json:"quantity"`
}

type DailyStat struct {
	Date    string  `json:"date"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type AdvancedStats struct {
	TopDishes          []DishScore      `json:"topDishes"`
	Daily              []DailyStat      `json:"daily"`
	StatusCounts       map[string]int64 `json:"statusCounts"`
	RatingDistribution map[string]int64 `json:"ratingDistribution"`
}
