package models

import "time"

// BusinessData поля формы, описывающие бизнес-идею.
type BusinessData struct {
	ProjectName       string `json:"project_name" validate:"required,max=200"`
	Sector            string `json:"sector" validate:"required,max=200"`
	Problem           string `json:"problem" validate:"required,max=2000"`
	Solution          string `json:"solution" validate:"required,max=2000"`
	TargetAudience    string `json:"target_audience" validate:"required,max=2000"`
	BusinessModel     string `json:"business_model" validate:"required,max=2000"`
	Resources         string `json:"resources" validate:"max=2000"`
	MarketingStrategy string `json:"marketing_strategy" validate:"max=2000"`
	Vision            string `json:"vision" validate:"max=2000"`
}

// BusinessPlan сохранённый бизнес-план.
type BusinessPlan struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	UserEmail     string    `json:"user_email,omitempty"`
	GeneratedPlan string    `json:"generated_plan"`
	CreatedAt     time.Time `json:"created_at"`
	BusinessData
}
