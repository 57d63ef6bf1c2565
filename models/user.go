package models

// RoleAdmin marks users allowed to run operator actions such as
// refreshing the choice list from the results feed.
const RoleAdmin = "admin"

// User is the identity resolved upstream from a bearer token. The bracket
// engine trusts it as given and performs no authentication itself.
type User struct {
	ID    string   `json:"id" bson:"id"`
	Name  string   `json:"name" bson:"name"`
	Email string   `json:"email,omitempty" bson:"email,omitempty"`
	Roles []string `json:"roles,omitempty" bson:"roles,omitempty"`
}

func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
