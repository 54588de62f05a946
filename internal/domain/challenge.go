package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies a challenge
type Category string

const (
	CategoryWeb       Category = "web"
	CategoryOSINT     Category = "OSINT"
	CategoryPwn       Category = "pwn"
	CategoryCrypto    Category = "crypto"
	CategoryForensics Category = "forensics"
	CategoryReverse   Category = "reverse"
	CategoryMisc      Category = "misc"
)

// ValidCategory reports whether c is one of the known categories
func ValidCategory(c Category) bool {
	switch c {
	case CategoryWeb, CategoryOSINT, CategoryPwn, CategoryCrypto,
		CategoryForensics, CategoryReverse, CategoryMisc:
		return true
	}
	return false
}

// Challenge is a scored puzzle. Flag is the secret compared against
// submissions and is never serialized on public read paths (see
// ChallengeView).
type Challenge struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Author      string    `json:"author" bson:"author"`
	Description string    `json:"description" bson:"description"`
	Category    Category  `json:"category" bson:"category"`
	Value       int       `json:"value" bson:"value"`
	Flag        string    `json:"flag" bson:"flag"`
	FileURL     string    `json:"file_url,omitempty" bson:"file_url,omitempty"`
	Visible     bool      `json:"visible" bson:"visible"`
	SolvedBy    []string  `json:"solvedBy" bson:"solved_by"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// NewChallengeID creates a new challenge document ID
func NewChallengeID() string {
	return uuid.New().String()
}

// IsSolvedBy reports whether the team document ID is in the solver set
func (c *Challenge) IsSolvedBy(teamDocID string) bool {
	for _, id := range c.SolvedBy {
		if id == teamDocID {
			return true
		}
	}
	return false
}

// ChallengeView is the public catalog projection of a Challenge. The flag
// secret, visibility, solver set and audit timestamps are stripped.
type ChallengeView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Value       int      `json:"value"`
	FileURL     string   `json:"file_url,omitempty"`
}

// View returns the public projection of the challenge
func (c *Challenge) View() *ChallengeView {
	return &ChallengeView{
		ID:          c.ID,
		Name:        c.Name,
		Author:      c.Author,
		Description: c.Description,
		Category:    c.Category,
		Value:       c.Value,
		FileURL:     c.FileURL,
	}
}

// CreateChallengeRequest is the admin challenge creation payload
type CreateChallengeRequest struct {
	Name        string   `json:"name" binding:"required"`
	Author      string   `json:"author" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Category    Category `json:"category" binding:"required"`
	Value       int      `json:"value" binding:"required"`
	Flag        string   `json:"flag" binding:"required"`
	FileURL     string   `json:"file_url"`
	Visible     *bool    `json:"visible"`
}

// UpdateChallengeRequest is the admin challenge edit payload. Nil fields
// are left untouched.
type UpdateChallengeRequest struct {
	Name        *string   `json:"name"`
	Author      *string   `json:"author"`
	Description *string   `json:"description"`
	Category    *Category `json:"category"`
	Value       *int      `json:"value"`
	Flag        *string   `json:"flag"`
	FileURL     *string   `json:"file_url"`
	Visible     *bool     `json:"visible"`
}

// SubmitFlagRequest is the flag submission payload
type SubmitFlagRequest struct {
	ChallengeID string `json:"challengeId" binding:"required"`
	Flag        string `json:"flag" binding:"required"`
}

// SubmissionResult is the outcome of a flag submission
type SubmissionResult struct {
	Correct  bool `json:"correct"`
	NewScore int  `json:"newScore,omitempty"`
}
