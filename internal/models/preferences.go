package models

// UserPreferences is the singleton preference document of the client.
type UserPreferences struct {
	Theme            string `json:"theme" validate:"oneof=light dark"`
	RefreshFrequency string `json:"refreshFrequency" validate:"oneof=hourly daily weekly"`
	Categories       struct {
		AINews      bool `json:"aiNews"`
		StartupNews bool `json:"startupNews"`
		Crypto      bool `json:"crypto"`
		Creative    bool `json:"creative"`
	} `json:"categories"`
	Sources struct {
		Trusted []string `json:"trusted" validate:"dive,required"`
		Blocked []string `json:"blocked" validate:"dive,required"`
	} `json:"sources"`
	Notifications struct {
		NewContent  bool `json:"newContent"`
		PriceAlerts bool `json:"priceAlerts"`
	} `json:"notifications"`
}

const (
	RefreshHourly = "hourly"
	RefreshDaily  = "daily"
	RefreshWeekly = "weekly"
)

// DefaultPreferences is used on first load and whenever the stored document is unreadable.
func DefaultPreferences() UserPreferences {
	var p UserPreferences
	p.Theme = "dark"
	p.RefreshFrequency = RefreshDaily
	p.Categories.AINews = true
	p.Categories.StartupNews = true
	p.Categories.Crypto = true
	p.Categories.Creative = true
	p.Sources.Trusted = []string{}
	p.Sources.Blocked = []string{}
	p.Notifications.NewContent = true
	p.Notifications.PriceAlerts = false
	return p
}
