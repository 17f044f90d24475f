package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	QuestionsPerGame   = 5
	AnswersPerQuestion = 5
	RepeatWindowDays   = 5
)

// Game is one calendar day's quiz for a genre. At most one game exists
// per (date, genre); the whole Question/Answer graph is written once at
// generation time and read-only afterwards.
type Game struct {
	ID        int            `gorm:"type:int;primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime"                    json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"                    json:"updatedAt"`
	DeletedAt gorm.DeletedAt `                                         json:"deletedAt"`

	Date  time.Time `gorm:"type:date;not null;uniqueIndex:idx_games_date_genre,priority:1;index" json:"date"`
	Genre Genre     `gorm:"type:int;not null;uniqueIndex:idx_games_date_genre,priority:2"        json:"genre"`

	Questions []Question `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE" json:"questions"`
}

type Question struct {
	BaseModel
	GameID  int   `gorm:"type:int;not null;index"    json:"gameId"`
	TrackID int64 `gorm:"type:bigint;not null;index" json:"trackId"`

	Track   *Track   `gorm:"foreignKey:TrackID"                                json:"track,omitempty"`
	Answers []Answer `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"answers"`
}

// Answer's id is the referenced track id, scoped uniquely within its
// question by the composite primary key. Title is denormalized so the
// client never needs a track lookup to render choices.
type Answer struct {
	ID         int64  `gorm:"type:bigint;primaryKey" json:"id"`
	QuestionID int    `gorm:"type:int;primaryKey"    json:"questionId"`
	Title      string `gorm:"type:text;not null"     json:"title"`
}

// AvailableGame is the list-view projection returned by the available
// games endpoint.
type AvailableGame struct {
	ID    int       `json:"id"`
	Date  time.Time `json:"date"`
	Genre Genre     `json:"genre"`
}

// PreviousGame is backed by the previous_game_view SQL view created in
// cmd/migration/migrations; it links each game to the prior game of the
// same genre so the client can offer "play the one you missed".
type PreviousGame struct {
	GameID         int  `gorm:"column:game_id;primaryKey" json:"gameId"`
	PreviousGameID *int `gorm:"column:previous_game_id"   json:"previousGameId"`
}

func (PreviousGame) TableName() string {
	return "previous_game_view"
}

// CorrectAnswer returns the answer referencing the question's target
// track, or nil if the graph is malformed.
func (q *Question) CorrectAnswer() *Answer {
	for i := range q.Answers {
		if q.Answers[i].ID == q.TrackID {
			return &q.Answers[i]
		}
	}
	return nil
}
