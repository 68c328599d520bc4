package entity

// Principal is the authenticated caller. ProfileID is the Supabase
// profiles.id (or Firebase uid) the token was issued for.
type Principal struct {
	ProfileID string
	Role      string
}
