package models

import (
	"github.com/uptrace/bun"
)

// Rating is an explicit rating a user gave to an item.
type Rating struct {
	bun.BaseModel `bun:"table:ratings,alias:r"`

	ID     int    `bun:",pk,autoincrement" json:"id"`
	UserID int    `json:"user_id"`
	ItemID string `bun:"isbn" json:"item_id"`
	Value  int    `json:"value"`
}
