package models

// DailyCount количество за день (YYYY-MM-DD).
type DailyCount struct {
	Date     string `json:"date"`
	Projects int    `json:"projects"`
	Users    int    `json:"users"`
}

// RecentProject последний созданный проект для дашборда.
type RecentProject struct {
	ID          string `json:"id"`
	ProjectName string `json:"project_name"`
	Sector      string `json:"sector"`
	UserEmail   string `json:"user_email"`
	CreatedAt   string `json:"created_at"`
}

// DashboardStats статистика для админ-панели.
type DashboardStats struct {
	TotalProjects  int             `json:"total_projects"`
	TotalUsers     int             `json:"total_users"`
	RecentProjects int             `json:"recent_projects"`
	TotalPayments  int             `json:"total_payments"`
	CreditsSold    int             `json:"credits_sold"`
	RevenueMinor   int64           `json:"revenue_minor"`
	UnreadContacts int             `json:"unread_contacts"`
	LatestProjects []RecentProject `json:"latest_projects"`
	Last30Days     []DailyCount    `json:"last_30_days"`
}
