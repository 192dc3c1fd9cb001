package service

import (
	"fmt"

	"sop-platform/tenant-svc/internal/domain"
)

type Feature string

const (
	FeatureOrders        Feature = "orders"
	FeatureReservations  Feature = "reservations"
	FeatureAdvancedStats Feature = "advanced_stats"
	FeatureCustomDesign  Feature = "custom_design"
	FeatureQRCode        Feature = "qr_code"
)

// AllFeatures lists every gated capability.
var AllFeatures = []Feature{
	FeatureOrders,
	FeatureReservations,
	FeatureAdvancedStats,
	FeatureCustomDesign,
	FeatureQRCode,
}

var tierFeatures = map[domain.Tier][]Feature{
	domain.TierBasic:        {FeatureOrders, FeatureReservations},
	domain.TierProfessional: {FeatureOrders, FeatureReservations, FeatureCustomDesign, FeatureAdvancedStats, FeatureQRCode},
	domain.TierEnterprise:   AllFeatures,
}

// Gate resolves plan ids and answers feature access questions. The tier table
// is built once by NewGate and never mutated.
type Gate struct {
	plans   []domain.SubscriptionPlan
	byID    map[int]domain.SubscriptionPlan
	allowed map[domain.Tier]map[Feature]bool
}

func NewGate(plans []domain.SubscriptionPlan) *Gate {
	g := &Gate{
		plans:   plans,
		byID:    make(map[int]domain.SubscriptionPlan, len(plans)),
		allowed: make(map[domain.Tier]map[Feature]bool, len(tierFeatures)),
	}
	for _, p := range plans {
		g.byID[p.ID] = p
	}
	for tier, features := range tierFeatures {
		set := make(map[Feature]bool, len(features))
		for _, f := range features {
			set[f] = true
		}
		g.allowed[tier] = set
	}
	return g
}

func (g *Gate) Plans() []domain.SubscriptionPlan {
	return append([]domain.SubscriptionPlan(nil), g.plans...)
}

func (g *Gate) Plan(id int) (domain.SubscriptionPlan, error) {
	p, ok := g.byID[id]
	if !ok {
		return domain.SubscriptionPlan{}, fmt.Errorf("%w: plan %d", domain.ErrInvalidReference, id)
	}
	return p, nil
}

func (g *Gate) HasAccess(plan domain.SubscriptionPlan, feature Feature) bool {
	return g.allowed[plan.Tier][feature]
}

func (g *Gate) Require(plan domain.SubscriptionPlan, feature Feature) error {
	if !g.HasAccess(plan, feature) {
		return fmt.Errorf("%w: plan %q does not include %s", domain.ErrForbidden, plan.Name, feature)
	}
	return nil
}
