package models

import (
	"github.com/uptrace/bun"
)

// User is a reader whose recommendations can be requested. Age and Location
// are descriptive only; the engine keys everything on ID.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID       int    `bun:",pk" json:"id"`
	Age      *int   `json:"age,omitempty"`
	Location string `json:"location,omitempty"`

	RatingCount int `bun:",scanonly" json:"rating_count"`
}
