package models

import "time"

// Subscription links a user to the premium product. At most one exists per user.
type Subscription struct {
	ID        int64     `json:"id"`
	UserUID   string    `json:"user_uid"`
	IsActive  bool      `json:"is_active"`
	StartDate time.Time `json:"start_date"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Plan is a purchasable premium period.
type Plan struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Months      int    `json:"duration"`
	Days        int    `json:"days"`
	Price       string `json:"price"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

// Plans returns the plans offered on the checkout page.
func Plans(checkoutURLs map[int]string) []Plan {
	plans := []Plan{
		{ID: 1, Name: "Plano Mensal", Months: 1, Days: 30, Price: "R$ 50,00"},
		{ID: 3, Name: "Plano Trimestral", Months: 3, Days: 90, Price: "R$ 120,00"},
		{ID: 6, Name: "Plano Semestral", Months: 6, Days: 180, Price: "R$ 185,00"},
	}
	for i := range plans {
		plans[i].CheckoutURL = checkoutURLs[plans[i].ID]
	}
	return plans
}

// PlanByID looks a plan up by id.
func PlanByID(id int) (Plan, bool) {
	for _, p := range Plans(nil) {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}
