package domain

// SupabaseUser represents a user from Supabase Auth
type SupabaseUser struct {
	ID           string
	Email        string
	UserMetadata map[string]interface{}
	CreatedAt    string
	UpdatedAt    string
}

// LocalUserID is the owner of analyses made without authentication
// (CLI runs and servers started without Supabase).
const LocalUserID = "local"

// LocalUser returns the user assumed when Supabase is not configured.
func LocalUser() *SupabaseUser {
	return &SupabaseUser{ID: LocalUserID, Email: "local@localhost", UserMetadata: map[string]interface{}{}}
}
