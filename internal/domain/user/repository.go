package user

import "context"

// Reader resolves users by id. GetByID returns nil, nil when absent.
type Reader interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetManyByID(ctx context.Context, ids []int64) ([]User, error)
}

// Repository defines persistence operations for User aggregate.
type Repository interface {
	Reader
	Create(ctx context.Context, u *User) error
}
