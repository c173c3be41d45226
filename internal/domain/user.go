package domain

import "time"

type User struct {
	ID        uint       `json:"id"`
	Name      string     `json:"name"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Birthday  *time.Time `json:"birthday"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// UserSet is the set of user IDs known to exist, captured before
// validation so the rules engine never touches storage.
type UserSet map[uint]struct{}

func NewUserSet(ids ...uint) UserSet {
	s := make(UserSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}

	return s
}

func (s UserSet) Contains(id uint) bool {
	_, ok := s[id]

	return ok
}
