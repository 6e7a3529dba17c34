package domain

import "time"

type User struct {
	ID        int64     `db:"id"`
	Username  string    `db:"username" validate:"required,min=3,max=32"`
	Email     string    `db:"email" validate:"required,email"`
	CreatedAt time.Time `db:"created_at"`
}
