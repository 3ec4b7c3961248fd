package entity

import "time"

type Note struct {
	ID        uint64
	ProjectID uint64
	CreatedBy uint64
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
