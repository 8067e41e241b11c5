package models

type Role string

const (
	RoleFreelancer Role = "freelancer"
	RoleClient     Role = "client"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFreelancer, RoleClient, RoleAdmin:
		return true
	}
	return false
}

// DashboardPath returns the dashboard route owned by the role.
func (r Role) DashboardPath() string {
	if !r.Valid() {
		return "/dashboard"
	}
	return "/dashboard/" + string(r)
}

type User struct {
	ID              string       `json:"_id"`
	Username        string       `json:"username"`
	Email           string       `json:"email"`
	FullName        string       `json:"fullName"`
	Role            Role         `json:"role"`
	Avatar          string       `json:"avatar,omitempty"`
	DetailsComplete bool         `json:"isDetailsComplete"`
	Details         *UserDetails `json:"details,omitempty"`
}

// UserDetails holds the role-specific profile. Freelancer fields and client
// fields are never both set.
type UserDetails struct {
	// Freelancer
	Skills     []string `json:"skills,omitempty"`
	Bio        string   `json:"bio,omitempty"`
	Experience string   `json:"experience,omitempty"`
	HourlyRate float64  `json:"hourlyRate,omitempty"`
	Portfolio  string   `json:"portfolio,omitempty"`

	// Client
	CompanyName    string `json:"companyName,omitempty"`
	CompanyWebsite string `json:"companyWebsite,omitempty"`
	Industry       string `json:"industry,omitempty"`
}

// Tokens is the credential pair issued by the backend on login and refresh.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
