package donation

// Entities returned by the donation platform's REST API. Shapes are trusted
// verbatim from the server; money fields arrive as strings and are passed
// through untouched.

// Category groups campaigns.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Progress is the fundraising state of a campaign.
type Progress struct {
	Raised     string  `json:"raised"`
	Percentage float64 `json:"percentage"`
	Remaining  float64 `json:"remaining"`
}

// Campaign is a fundraising campaign run by an NGO.
type Campaign struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	GoalAmount    string   `json:"goal_amount"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	FeaturedImage string   `json:"featured_image"`
	Category      string   `json:"category"`
	NGO           string   `json:"ngo"`
	Progress      Progress `json:"progress"`
}

// DonationRecord is one entry of the donor's donation history.
type DonationRecord struct {
	ID           int    `json:"id"`
	CampaignName string `json:"campaign_name"`
	Amount       string `json:"amount"`
	Status       string `json:"status"`
	DonatedAt    string `json:"donated_at"`
}

// Donor is the authenticated donor's profile.
type Donor struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfileImage string `json:"profile_image"`
}

// TokenPair is the token material issued by the auth endpoints.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int // seconds, 0 when the server omitted it
}
