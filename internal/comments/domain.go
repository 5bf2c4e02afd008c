// Package comments exposes user comments on businesses.
package comments

import (
	"time"

	"github.com/bizdir/bizdir/internal/shared"
)

// Comment is a remark left on a Biz. UserID always names the author and is
// assigned by the server.
type Comment struct {
	ID        int64     `json:"id"`
	BizID     int64     `json:"biz" validate:"required,gt=0"`
	UserID    int64     `json:"user" validate:"required"`
	Body      string    `json:"body" validate:"required,max=2000"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func commentID(c Comment) int64 { return c.ID }

// stampOwner makes the caller the author, whatever the payload claimed.
func stampOwner(caller *shared.Identity, c *Comment) {
	c.UserID = 0
	if caller != nil {
		c.UserID = caller.ID
	}
}

func preserveComment(prev Comment, next *Comment) {
	next.ID = prev.ID
	next.UserID = prev.UserID
	next.CreatedAt = prev.CreatedAt
	next.UpdatedAt = prev.UpdatedAt
}
