package storage

import (
	"time"

	"github.com/renderinc/catalog-search/internal/catalog"
)

// Record is an item as persisted by an import
type Record struct {
	catalog.Item
	Position    int       // canonical display order within the catalog
	ContentHash string    // md5 of the item's encoded form
	SyncedAt    time.Time // when the import wrote it
}

// metadata holds the display-only fields, stored as one JSON column
type metadata struct {
	Rating      float64 `json:"rating,omitempty"`
	Students    string  `json:"students,omitempty"`
	Price       string  `json:"price,omitempty"`
	Duration    string  `json:"duration,omitempty"`
	Image       string  `json:"image,omitempty"`
	PublishedAt string  `json:"published_at,omitempty"`
	ReadTime    string  `json:"read_time,omitempty"`
	Views       string  `json:"views,omitempty"`
	Comments    int     `json:"comments,omitempty"`
	Likes       int     `json:"likes,omitempty"`
}

func metadataOf(it catalog.Item) metadata {
	return metadata{
		Rating:      it.Rating,
		Students:    it.Students,
		Price:       it.Price,
		Duration:    it.Duration,
		Image:       it.Image,
		PublishedAt: it.PublishedAt,
		ReadTime:    it.ReadTime,
		Views:       it.Views,
		Comments:    it.Comments,
		Likes:       it.Likes,
	}
}

func (m metadata) apply(it *catalog.Item) {
	it.Rating = m.Rating
	it.Students = m.Students
	it.Price = m.Price
	it.Duration = m.Duration
	it.Image = m.Image
	it.PublishedAt = m.PublishedAt
	it.ReadTime = m.ReadTime
	it.Views = m.Views
	it.Comments = m.Comments
	it.Likes = m.Likes
}
