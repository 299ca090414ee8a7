package link

// Link is a social-media URL owned by exactly one user. When no name is
// supplied the registrable domain of the URL, capitalized, is used.
type Link struct {
	ID     int64
	UserID int64
	Name   string
	URL    string
}
