package models

// Todo is a task owned by exactly one user.
type Todo struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"-"`
	Title     string    `db:"title" json:"title"`
	Deadline  Timestamp `db:"deadline" json:"deadline"`
	Done      bool      `db:"done" json:"done"`
	CreatedAt Timestamp `db:"created_at" json:"created_at"`
}
