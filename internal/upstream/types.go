package upstream

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/tjfontaine/fantasy-relay/internal/domain"
)

// Me is the payload of GET /api/me/. Player is nil when the cookies are not
// recognized as a signed-in user.
type Me struct {
	Player *MePlayer `json:"player"`
}

// MePlayer is the signed-in user record.
type MePlayer struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Entry     *int   `json:"entry"`
	Email     string `json:"email,omitempty"`
}

// DisplayName joins first and last name.
func (p *MePlayer) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// AccountID is the numeric entry id, or 0 when the user has no team yet.
func (p *MePlayer) AccountID() int {
	if p.Entry == nil {
		return 0
	}
	return *p.Entry
}

// DecodeMe parses a /api/me/ body.
func DecodeMe(body []byte) (*Me, error) {
	var me Me
	if err := json.Unmarshal(body, &me); err != nil {
		return nil, domain.ErrMalformedResponse("failed to unmarshal profile").WithCause(err)
	}
	return &me, nil
}

// Bootstrap is the subset of /api/bootstrap-static/ the relay uses.
type Bootstrap struct {
	Events       []Event       `json:"events"`
	Teams        []Team        `json:"teams"`
	Elements     []Element     `json:"elements"`
	ElementTypes []ElementType `json:"element_types"`
}

// Event is a gameweek.
type Event struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	DeadlineTime time.Time `json:"deadline_time"`
	Finished     bool      `json:"finished"`
	IsCurrent    bool      `json:"is_current"`
	IsNext       bool      `json:"is_next"`
}

// Team is a club with its strength ratings.
type Team struct {
	ID                  int    `json:"id"`
	Code                int    `json:"code"`
	Name                string `json:"name"`
	ShortName           string `json:"short_name"`
	Strength            int    `json:"strength"`
	StrengthOverallHome int    `json:"strength_overall_home"`
	StrengthOverallAway int    `json:"strength_overall_away"`
	StrengthAttackHome  int    `json:"strength_attack_home"`
	StrengthAttackAway  int    `json:"strength_attack_away"`
	StrengthDefenceHome int    `json:"strength_defence_home"`
	StrengthDefenceAway int    `json:"strength_defence_away"`
}

// Element is a player.
type Element struct {
	ID                       int    `json:"id"`
	WebName                  string `json:"web_name"`
	FirstName                string `json:"first_name"`
	SecondName               string `json:"second_name"`
	Team                     int    `json:"team"`
	ElementType              int    `json:"element_type"`
	Status                   string `json:"status"`
	Form                     string `json:"form"`
	TotalPoints              int    `json:"total_points"`
	NowCost                  int    `json:"now_cost"`
	Minutes                  int    `json:"minutes"`
	Starts                   int    `json:"starts"`
	ChanceOfPlayingNextRound *int   `json:"chance_of_playing_next_round"`
}

// FormValue parses the form string; upstream sends it as a decimal string.
func (e *Element) FormValue() float64 {
	f, err := strconv.ParseFloat(e.Form, 64)
	if err != nil {
		return 0
	}
	return f
}

// Price is the current cost in millions (now_cost is in tenths).
func (e *Element) Price() float64 {
	return float64(e.NowCost) / 10
}

// ElementType is a playing position.
type ElementType struct {
	ID                int    `json:"id"`
	SingularNameShort string `json:"singular_name_short"`
}

// CurrentEvent returns the current gameweek id, falling back to the next one,
// or 0 before the season starts.
func (b *Bootstrap) CurrentEvent() int {
	next := 0
	for _, ev := range b.Events {
		if ev.IsCurrent {
			return ev.ID
		}
		if ev.IsNext && next == 0 {
			next = ev.ID
		}
	}
	return next
}

// DecodeBootstrap parses a bootstrap payload.
func DecodeBootstrap(body []byte) (*Bootstrap, error) {
	var b Bootstrap
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, domain.ErrMalformedResponse("failed to unmarshal bootstrap").WithCause(err)
	}
	if len(b.Teams) == 0 {
		return nil, domain.ErrMalformedResponse("bootstrap payload has no teams")
	}
	return &b, nil
}

// Fixture is one match.
type Fixture struct {
	ID              int        `json:"id"`
	Event           *int       `json:"event"`
	TeamH           int        `json:"team_h"`
	TeamA           int        `json:"team_a"`
	KickoffTime     *time.Time `json:"kickoff_time"`
	TeamHDifficulty int        `json:"team_h_difficulty"`
	TeamADifficulty int        `json:"team_a_difficulty"`
	Finished        bool       `json:"finished"`
}

// DecodeFixtures parses a fixtures payload.
func DecodeFixtures(body []byte) ([]Fixture, error) {
	var fixtures []Fixture
	if err := json.Unmarshal(body, &fixtures); err != nil {
		return nil, domain.ErrMalformedResponse("failed to unmarshal fixtures").WithCause(err)
	}
	return fixtures, nil
}

// Pick is one squad slot in a picks or my-team payload. PurchasePrice and
// SellingPrice are owner-only: upstream omits them for other sessions.
type Pick struct {
	Element       int  `json:"element"`
	Position      int  `json:"position"`
	Multiplier    int  `json:"multiplier"`
	IsCaptain     bool `json:"is_captain"`
	IsViceCaptain bool `json:"is_vice_captain"`
	PurchasePrice *int `json:"purchase_price,omitempty"`
	SellingPrice  *int `json:"selling_price,omitempty"`
}

// HasOwnerFields reports whether both owner-only price fields are present.
func (p *Pick) HasOwnerFields() bool {
	return p.PurchasePrice != nil && p.SellingPrice != nil
}
