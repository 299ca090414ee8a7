package user

import (
	"github.com/alu-network/backend/internal/link"
)

// LinkJSON is the wire shape of a link inside a serialized user.
type LinkJSON struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// UserJSON is the wire shape of a user. The password never appears;
// permission flags are admin-surface concerns and are not exposed here.
type UserJSON struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	ShortBio         string     `json:"short_bio"`
	AboutMe          string     `json:"about_me"`
	UserRole         string     `json:"user_role"`
	Intake           string     `json:"intake"`
	ProfessionalRole string     `json:"professional_role"`
	CurrentCompany   string     `json:"current_company"`
	Links            []LinkJSON `json:"links"`
}

// Serialize renders a user with its links for the API.
func Serialize(u *User, links []link.Link) UserJSON {
	linkJSON := make([]LinkJSON, 0, len(links))
	for _, l := range links {
		linkJSON = append(linkJSON, LinkJSON{Name: l.Name, URL: l.URL})
	}

	return UserJSON{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		ShortBio:         u.ShortBio,
		AboutMe:          u.AboutMe,
		UserRole:         u.UserRole,
		Intake:           u.Intake,
		ProfessionalRole: u.ProfessionalRole,
		CurrentCompany:   u.CurrentCompany,
		Links:            linkJSON,
	}
}
