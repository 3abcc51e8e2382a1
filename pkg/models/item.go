package models

import (
	"strings"

	"github.com/uptrace/bun"
)

// PlaceholderCoverURL is used when an item has no image of any size.
const PlaceholderCoverURL = "https://via.placeholder.com/150x200?text=No+Cover"

// Item is a single catalog entry. Items are treated as immutable values once
// they leave a source: every transformation in the engine returns copies.
type Item struct {
	bun.BaseModel `bun:"table:items,alias:i"`

	RowID           int      `bun:",pk,autoincrement" json:"-"`
	ID              string   `bun:"isbn" json:"id"`
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	Publisher       string   `json:"publisher"`
	PublicationYear string   `json:"publication_year"`
	ImageURLSmall   string   `bun:"image_url_s" json:"image_url_s,omitempty"`
	ImageURLMedium  string   `bun:"image_url_m" json:"image_url_m,omitempty"`
	ImageURLLarge   string   `bun:"image_url_l" json:"image_url_l,omitempty"`
	Score           *float64 `json:"score,omitempty"`
	OwnerUserID     *int     `json:"owner_user_id,omitempty"`
}

// Identity returns the item's stable identifier. Items without one are still
// displayable but never deduplicated.
func (i Item) Identity() (string, bool) {
	id := strings.TrimSpace(i.ID)
	if id == "" {
		return "", false
	}
	return id, true
}

// CoerceYear parses the raw publication year. Absent or unparseable input
// yields 0 so filters and statistics never have to deal with errors.
func (i Item) CoerceYear() int {
	return ParseYear(i.PublicationYear)
}

// CoverURL picks the first available image by preference: large, medium,
// small, then the placeholder.
func (i Item) CoverURL() string {
	for _, u := range []string{i.ImageURLLarge, i.ImageURLMedium, i.ImageURLSmall} {
		if strings.TrimSpace(u) != "" {
			return u
		}
	}
	return PlaceholderCoverURL
}

// ScoreValue returns the score, or 0 when the item has none.
func (i Item) ScoreValue() float64 {
	if i.Score == nil {
		return 0
	}
	return *i.Score
}

// IsOwnedBy reports whether the item is scoped to the given user. Unowned
// items are owned by nobody.
func (i Item) IsOwnedBy(userID int) bool {
	return i.OwnerUserID != nil && *i.OwnerUserID == userID
}

// WithOwner returns a copy of the item scoped to userID.
func (i Item) WithOwner(userID int) Item {
	owner := userID
	i.OwnerUserID = &owner
	return i
}

// WithScore returns a copy of the item carrying score.
func (i Item) WithScore(score float64) Item {
	s := score
	i.Score = &s
	return i
}

// ParseYear reads an integer prefix from raw: leading whitespace is skipped,
// an optional sign is honored, and the longest run of digits that follows is
// used. Anything else gives 0.
func ParseYear(raw string) int {
	s := strings.TrimLeft(raw, " \t\r\n")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	year := 0
	digits := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		// Nothing meaningful is longer than this; stop before overflowing.
		if digits == 9 {
			break
		}
		year = year*10 + int(r-'0')
		digits++
	}
	if neg {
		return -year
	}
	return year
}
