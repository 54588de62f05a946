package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxTeamMembers is the number of members a team may have in addition to
// its leader.
const MaxTeamMembers = 4

// Member is a single team member contact
type Member struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
}

// Team represents a competing unit. The document ID is a UUID used as the
// JWT subject; TeamID is the opaque credential identifier distributed to
// the team (TEAM-<12 hex>).
type Team struct {
	ID               string    `json:"id" bson:"_id"`
	TeamID           string    `json:"teamId" bson:"team_id"`
	TeamName         string    `json:"teamName" bson:"team_name"`
	PasswordHash     string    `json:"-" bson:"password_hash"`
	Leader           Member    `json:"leader" bson:"leader"`
	Members          []Member  `json:"members" bson:"members"`
	Score            int       `json:"score" bson:"score"`
	SolvedChallenges []string  `json:"solvedChallenges" bson:"solved_challenges"`
	CreatedAt        time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updated_at"`
}

// NewTeamDocID creates a new team document ID
func NewTeamDocID() string {
	return uuid.New().String()
}

// HasSolved reports whether the team's solved set contains the challenge
func (t *Team) HasSolved(challengeID string) bool {
	for _, id := range t.SolvedChallenges {
		if id == challengeID {
			return true
		}
	}
	return false
}

// GenerateTeamID produces a credential identifier of the form
// TEAM-<12 upper hex chars>. Uniqueness is enforced by the caller against
// the store.
func GenerateTeamID() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "TEAM-" + strings.ToUpper(hex.EncodeToString(b)), nil
}

// GenerateTeamPassword produces a one-time password of the form
// 0x00{XXXXXX-XXXXXX-XXXXXX-XXXXXX} (four upper hex groups). The format
// must round-trip exactly: credentials in this shape are already
// distributed to teams.
func GenerateTeamPassword() (string, error) {
	groups := make([]string, 4)
	for i := range groups {
		b := make([]byte, 3)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}
		groups[i] = strings.ToUpper(hex.EncodeToString(b))
	}
	return fmt.Sprintf("0x00{%s}", strings.Join(groups, "-")), nil
}

// RegisterTeamRequest is the admin team registration payload
type RegisterTeamRequest struct {
	TeamName string   `json:"teamName" binding:"required"`
	Leader   Member   `json:"leader" binding:"required"`
	Members  []Member `json:"members"`
}

// RegisterTeamResponse carries the generated credentials. The plaintext
// password is shown exactly once; only its bcrypt hash is stored.
type RegisterTeamResponse struct {
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
	Password string `json:"password"`
}

// TeamLoginRequest is the team login payload
type TeamLoginRequest struct {
	TeamID   string `json:"teamId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TeamProfile is the read-side view of a team, without credentials
type TeamProfile struct {
	TeamName string   `json:"teamName"`
	Leader   Member   `json:"leader"`
	Members  []Member `json:"members"`
}

// Profile returns the team's public profile
func (t *Team) Profile() *TeamProfile {
	members := t.Members
	if members == nil {
		members = []Member{}
	}
	return &TeamProfile{
		TeamName: t.TeamName,
		Leader:   t.Leader,
		Members:  members,
	}
}

// LeaderboardEntry is one row of the projected leaderboard
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	TeamID string `json:"teamId"`
	Score  int    `json:"score"`
}
