package domain

// Identity is the sensitive contact payload this subsystem protects. It is
// owned by the profile store and read-only here.
type Identity struct {
	UserID   string `json:"user_id" bson:"user_id"`
	FullName string `json:"full_name" bson:"full_name"`
	Email    string `json:"email" bson:"email"`
	Phone    string `json:"phone" bson:"phone"`
	// Location is a free-text location detail (street, district, notes).
	Location string `json:"location" bson:"location"`
}
