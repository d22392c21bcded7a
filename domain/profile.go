package domain

// Profile is a read-only directory entry used to resolve user
// identifiers to human-readable labels. This client never writes
// profiles.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

func (p Profile) EntityID() string { return p.ID }
