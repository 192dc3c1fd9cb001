package domain

type Tier string

const (
	TierBasic        Tier = "basic"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
)

type SubscriptionPlan struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	NameAr    string   `json:"nameAr"`
	Price     float64  `json:"price"`
	MaxDishes int      `json:"maxDishes"`
	Tier      Tier     `json:"tier"`
	Features  []string `json:"features"`
}

// DefaultPlans is the platform plan catalog. Features here are marketing
// copy; access decisions come from the gate's tier table.
func DefaultPlans() []SubscriptionPlan {
	return []SubscriptionPlan{
		{
			ID: 1, Name: "Basic", NameAr: "الباقة الأساسية", Price: 99, MaxDishes: 50, Tier: TierBasic,
			Features: []string{"Digital menu", "Dish editing", "Custom link"},
		},
		{
			ID: 2, Name: "Professional", NameAr: "الباقة الاحترافية", Price: 249, MaxDishes: 200, Tier: TierProfessional,
			Features: []string{"Custom design", "QR Code", "Simple statistics", "Support"},
		},
		{
			ID: 3, Name: "Enterprise", NameAr: "باقة الشركات", Price: 499, MaxDishes: 9999, Tier: TierEnterprise,
			Features: []string{"Direct ordering", "Reservations", "Advanced statistics", "24/7 support"},
		},
	}
}
