package models

// Roles as known to the user directory.
const (
	RoleSeeker   = "seeker"
	RoleEmployer = "employer"
	RoleAdmin    = "admin"
)

// User is the slice of the directory record this service needs: enough to
// authorize a handshake and to build sender summaries.
type User struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	Name      string `bson:"name" json:"name"`
	Role      string `bson:"role" json:"role"`
	AvatarURL string `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	IsActive  bool   `bson:"is_active" json:"is_active"`
}
