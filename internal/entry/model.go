package entry

import "time"

const (
	TypeVisited  = "visited"
	TypeWishlist = "wishlist"
)

// Coordinates is embedded into entries and locations. Entries keep their own
// copy of the pair (and of the location name): the linked Location row may
// drift from what the user typed, and reads never go through it.
type Coordinates struct {
	Lat float64 `json:"lat" gorm:"column:lat;not null"`
	Lng float64 `json:"lng" gorm:"column:lng;not null"`
}

// Location is a deduplicated place record. Rows are created lazily by the
// Resolver, never updated and never deleted.
type Location struct {
	ID          uint64      `gorm:"primaryKey"`
	Name        string      `gorm:"index;not null"`
	Coordinates Coordinates `gorm:"embedded"`
	Country     *string     `gorm:"type:text"`
	City        *string     `gorm:"type:text"`
	Region      *string     `gorm:"type:text"`
}

// Entry is a single diary record, either a visited-trip log or a wishlist
// destination.
type Entry struct {
	ID             uint64      `gorm:"primaryKey"`
	UserID         uint64      `gorm:"index;not null"`
	Title          string      `gorm:"not null"`
	Content        *string     `gorm:"type:text"`
	LocationName   string      `gorm:"not null"`
	Coordinates    Coordinates `gorm:"embedded"`
	DateStart      *time.Time  `gorm:"type:date"`
	DateEnd        *time.Time  `gorm:"type:date"`
	EntryType      string      `gorm:"not null;default:'visited'"`
	Transportation *string     `gorm:"type:text"`
	CreatedTime    time.Time   `gorm:"index;not null;autoCreateTime"`
	LocationID     *uint64     `gorm:"index"`

	Photos []Photo `gorm:"foreignKey:EntryID"`
}

// Photo belongs to exactly one Entry and is deleted with it.
type Photo struct {
	ID               uint64     `gorm:"primaryKey"`
	EntryID          uint64     `gorm:"index;not null"`
	PublicID         string     `gorm:"index;not null"`
	URL              string     `gorm:"not null"`
	Width            int        `gorm:"not null;default:0"`
	Height           int        `gorm:"not null;default:0"`
	Format           string     `gorm:"type:text;not null;default:''"`
	Bytes            int64      `gorm:"not null;default:0"`
	OriginalFilename *string    `gorm:"type:text"`
	CapturedAt       *time.Time `gorm:"type:timestamptz"`
}
