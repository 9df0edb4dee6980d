package models

import (
	"time"

	"gorm.io/gorm"
)

// QuestionType is the single authoritative wire mapping for question kinds.
// Unknown values are tolerated by consumers and aggregate as "no data".
type QuestionType int

const (
	QuestionRating QuestionType = iota
	QuestionMultipleChoice
	QuestionText
	QuestionCheckbox
	QuestionLinearScale
	QuestionDate
	QuestionTime
	QuestionShortText
)

func (t QuestionType) String() string {
	switch t {
	case QuestionRating:
		return "rating"
	case QuestionMultipleChoice:
		return "multiple_choice"
	case QuestionText:
		return "text"
	case QuestionCheckbox:
		return "checkbox"
	case QuestionLinearScale:
		return "linear_scale"
	case QuestionDate:
		return "date"
	case QuestionTime:
		return "time"
	case QuestionShortText:
		return "short_text"
	}
	return "unknown"
}

// IsChoice reports whether answers to this question select from Options.
func (t QuestionType) IsChoice() bool {
	return t == QuestionMultipleChoice || t == QuestionCheckbox
}

// IsScale reports whether answers to this question are numeric scores.
func (t QuestionType) IsScale() bool {
	return t == QuestionRating || t == QuestionLinearScale
}

type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex"`
	Name         string
	GoogleID     *string `gorm:"uniqueIndex"`
	Picture      string
	PasswordHash string `json:"-"`
	Role         string
	Surveys      []Survey
}

type Survey struct {
	gorm.Model
	UserID        uint
	Title         string
	Description   string
	Questions     []Question
	ResponseLimit *int
	ReleaseDate   *time.Time
	CloseDate     *time.Time
	Responses     []Response
	Link          string
	IsPublished   bool
	Version       int
}

type Question struct {
	gorm.Model
	SurveyID   uint
	Title      string
	Type       QuestionType
	Options    []Option `gorm:"foreignKey:QuestionID"`
	IsRequired bool
	Order      int
	MinValue   *int
	MaxValue   *int
}

type Option struct {
	gorm.Model
	QuestionID uint
	Text       string
	Value      string
}

// Response is one respondent's complete submission. It is never mutated after
// creation. RespondentID is nil for anonymous submissions; Score is an
// optional submission-level satisfaction rating.
type Response struct {
	gorm.Model
	SurveyID     uint
	RespondentID *uint
	Score        *int
	SubmittedAt  time.Time
	Answers      []Answer
	IP           string
	UserAgent    string
}

// Answer holds either a single Value or a SelectedOptions list, depending on
// whether the owning question is single- or multi-valued.
type Answer struct {
	gorm.Model
	ResponseID      uint
	QuestionID      uint
	Value           string
	SelectedOptions []string `gorm:"serializer:json"`
}

type SurveyLink struct {
	gorm.Model
	SurveyID uint
	Link     string `gorm:"uniqueIndex"`
	IsActive bool
}

type Webhook struct {
	gorm.Model
	UserID   uint
	SurveyID uint
	URL      string
	Events   string
	Secret   string `json:"-"`
}
