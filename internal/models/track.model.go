package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Track is immutable reference data: created by ingestion, read by the
// generator. The primary key is the external catalog id, not a local
// autoincrement, so answers and stem paths share one id space.
type Track struct {
	ID        int64     `gorm:"type:bigint;primaryKey" json:"id" validate:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime"         json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"         json:"updatedAt"`

	Title   string  `gorm:"type:text;not null" json:"title" validate:"required"`
	Artist  string  `gorm:"type:text;not null" json:"artist" validate:"required"`
	Preview *string `gorm:"type:text"          json:"preview,omitempty"`
	Cover   *string `gorm:"type:text"          json:"cover,omitempty"`

	// Chart metadata from the external catalog.
	BPM  *decimal.Decimal `gorm:"type:decimal(6,2)" json:"bpm,omitempty"`
	Gain *decimal.Decimal `gorm:"type:decimal(6,2)" json:"gain,omitempty"`

	// Genre ids the track charted under, stored as a JSON array.
	Genres datatypes.JSON `gorm:"type:jsonb" json:"genres,omitempty"`

	Source    *TrackSource `gorm:"foreignKey:TrackID;constraint:OnDelete:CASCADE" json:"source,omitempty"`
	Questions []Question   `gorm:"foreignKey:TrackID"                             json:"questions,omitempty"`
}

func (t *Track) BeforeCreate(tx *gorm.DB) error {
	if t.ID <= 0 {
		return gorm.ErrInvalidValue
	}
	if t.Title == "" {
		return gorm.ErrInvalidValue
	}
	if t.Artist == "" {
		return gorm.ErrInvalidValue
	}
	return nil
}

// TrackSource records where a track's metadata came from.
type TrackSource struct {
	BaseModel
	TrackID    int64  `gorm:"type:bigint;not null;uniqueIndex" json:"trackId"`
	SourceKind string `gorm:"type:text;not null"               json:"sourceKind"`
	SourceID   string `gorm:"type:text;not null"               json:"sourceId"`
	SourceURL  string `gorm:"type:text"                        json:"sourceUrl,omitempty"`
}

// Stem names an isolated instrument channel of a track. Stems are not
// persisted relationally; they are addressed by convention in the blob
// store as <prefix><trackID>/<stem>.mp3.
type Stem string

const (
	StemDrums  Stem = "drums"
	StemVocals Stem = "vocals"
	StemGuitar Stem = "guitar"
	StemBass   Stem = "bass"
	StemPiano  Stem = "piano"
	StemOther  Stem = "other"
)

var Stems = []Stem{StemDrums, StemVocals, StemGuitar, StemBass, StemPiano, StemOther}

func (s Stem) Valid() bool {
	switch s {
	case StemDrums, StemVocals, StemGuitar, StemBass, StemPiano, StemOther:
		return true
	}
	return false
}
