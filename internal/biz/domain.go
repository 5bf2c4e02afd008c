package biz

import "time"

// Biz is a business listed in the directory.
type Biz struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description" validate:"max=4000"`
	Address     string    `json:"address" validate:"required,max=255"`
	City        string    `json:"city" validate:"required,max=255"`
	Phone       string    `json:"phone" validate:"required,e164"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Hours is one opening window of a Biz on a weekday (1 = Monday).
type Hours struct {
	ID       int64  `json:"id"`
	BizID    int64  `json:"biz" validate:"required,gt=0"`
	Weekday  int    `json:"weekday" validate:"required,min=1,max=7"`
	FromHour string `json:"from_hour" validate:"required,clock"`
	ToHour   string `json:"to_hour" validate:"required,clock"`
}

func bizID(b Biz) int64     { return b.ID }
func hoursID(h Hours) int64 { return h.ID }

// preserveBiz keeps server-owned columns across updates.
func preserveBiz(prev Biz, next *Biz) {
	next.ID = prev.ID
	next.CreatedAt = prev.CreatedAt
	next.UpdatedAt = prev.UpdatedAt
}

func preserveHours(prev Hours, next *Hours) {
	next.ID = prev.ID
}
