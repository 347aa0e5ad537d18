package account

type User struct {
	ID         int64          `json:"id"`
	Email      string         `json:"email"`
	FamilyFile string         `json:"family_file"`
	PublicSlug string         `json:"public_slug"`
	IsPublic   bool           `json:"is_public"`
	State      map[string]any `json:"state"`
}
