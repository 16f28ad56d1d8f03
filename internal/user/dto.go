package user

type ListUsersResponse struct {
	Users []*User `json:"users"`
	Total int     `json:"total"`
}
