package models

// User is a plan holder owning an ordered list of to-dos.
// It maps to the `users` table; Todos is filled from the `todos` table in creation order.
type User struct {
	ID       string  `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Username string  `db:"username" json:"username"`
	Pro      bool    `db:"pro" json:"pro"`
	Todos    []*Todo `db:"-" json:"todos"`
}

// TodoCount returns the number of to-dos the user currently owns.
func (u *User) TodoCount() int {
	return len(u.Todos)
}
