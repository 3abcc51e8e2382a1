package users

// ListUsersQuery represents the query parameters for listing users.
type ListUsersQuery struct {
	Limit  int `query:"limit" json:"limit" default:"50" validate:"min=1,max=500"`
	Offset int `query:"offset" json:"offset" default:"0" validate:"min=0"`
}
