package domain

// Patch types list the mutable fields of each entity. A nil pointer leaves the
// field unchanged.

type RestaurantPatch struct {
	Name                *string              `json:"name"`
	Logo                *string              `json:"logo"`
	CoverImage          *string              `json:"coverImage"`
	Address             *string              `json:"address"`
	Phone               *string              `json:"phone"`
	Email               *string              `json:"email"`
	Currency            *string              `json:"currency"`
	ThemeColor          *string              `json:"themeColor"`
	FontFamily          *string              `json:"fontFamily"`
	SocialLinks         *[]SocialLink        `json:"socialLinks"`
	ReservationSettings *ReservationSettings `json:"reservationSettings"`
}

// TouchesDesign reports whether the patch changes custom-design fields.
func (p RestaurantPatch) TouchesDesign() bool {
	return p.ThemeColor != nil || p.FontFamily != nil || p.CoverImage != nil
}

func (p RestaurantPatch) Apply(r *Restaurant) {
	setString(&r.Name, p.Name)
	setString(&r.Logo, p.Logo)
	setString(&r.CoverImage, p.CoverImage)
	setString(&r.Address, p.Address)
	setString(&r.Phone, p.Phone)
	setString(&r.Email, p.Email)
	setString(&r.Currency, p.Currency)
	setString(&r.ThemeColor, p.ThemeColor)
	setString(&r.FontFamily, p.FontFamily)
	if p.SocialLinks != nil {
		r.SocialLinks = append([]SocialLink(nil), (*p.SocialLinks)...)
	}
	if p.ReservationSettings != nil {
		settings := *p.ReservationSettings
		r.ReservationSettings = &settings
	}
}

type AdminPatch struct {
	Status *RestaurantStatus `json:"status"`
	PlanID *int              `json:"planId"`
}

type CategoryPatch struct {
	RestaurantID *int    `json:"restaurantId"`
	Name         *string `json:"name"`
	NameEn       *string `json:"nameEn"`
	SortOrder    *int    `json:"sortOrder"`
}

func (p CategoryPatch) Apply(c *Category) error {
	if p.RestaurantID != nil && *p.RestaurantID != c.RestaurantID {
		return ErrInvalidOperation
	}
	setString(&c.Name, p.Name)
	setString(&c.NameEn, p.NameEn)
	if p.SortOrder != nil {
		c.SortOrder = *p.SortOrder
	}
	return nil
}

type DishPatch struct {
	RestaurantID    *int      `json:"restaurantId"`
	CategoryID      *int      `json:"categoryId"`
	Name            *string   `json:"name"`
	NameEn          *string   `json:"nameEn"`
	Description     *string   `json:"description"`
	Price           *float64  `json:"price"`
	Image           *string   `json:"image"`
	IsAvailable     *bool     `json:"isAvailable"`
	PreparationTime *int      `json:"preparationTime"`
	Allergens       *[]string `json:"allergens"`
}

func (p DishPatch) Apply(d *Dish) error {
	if p.RestaurantID != nil && *p.RestaurantID != d.RestaurantID {
		return ErrInvalidOperation
	}
	if p.CategoryID != nil {
		d.CategoryID = *p.CategoryID
	}
	setString(&d.Name, p.Name)
	setString(&d.NameEn, p.NameEn)
	setString(&d.Description, p.Description)
	setString(&d.Image, p.Image)
	if p.Price != nil {
		d.Price = *p.Price
	}
	if p.IsAvailable != nil {
		d.IsAvailable = *p.IsAvailable
	}
	if p.PreparationTime != nil {
		d.PreparationTime = *p.PreparationTime
	}
	if p.Allergens != nil {
		d.Allergens = append([]string(nil), (*p.Allergens)...)
	}
	return nil
}

type PlatformSettingsPatch struct {
	SiteName          *string `json:"siteName"`
	SupportEmail      *string `json:"supportEmail"`
	SupportPhone      *string `json:"supportPhone"`
	FacebookURL       *string `json:"facebookUrl"`
	TwitterURL        *string `json:"twitterUrl"`
	InstagramURL      *string `json:"instagramUrl"`
	FooterText        *string `json:"footerText"`
	IsMaintenanceMode *bool   `json:"isMaintenanceMode"`
}

func (p PlatformSettingsPatch) Apply(s *PlatformSettings) {
	setString(&s.SiteName, p.SiteName)
	setString(&s.SupportEmail, p.SupportEmail)
	setString(&s.SupportPhone, p.SupportPhone)
	setString(&s.FacebookURL, p.FacebookURL)
	setString(&s.TwitterURL, p.TwitterURL)
	setString(&s.InstagramURL, p.InstagramURL)
	setString(&s.FooterText, p.FooterText)
	if p.IsMaintenanceMode != nil {
		s.IsMaintenanceMode = *p.IsMaintenanceMode
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
