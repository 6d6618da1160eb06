package domain

// Claims is the identity carried by a signed session token. The role is a
// snapshot taken at login and is not refreshed for the token's lifetime.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}

// Actor is the authenticated caller a request is evaluated for.
type Actor struct {
	ID   string
	Role Role
}

// ActorFromUser builds an actor from a stored user record.
func ActorFromUser(u *User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
