// Package prediction estimates fantasy points for upcoming fixtures.
//
// The model is a heuristic: a weighted blend of recent form and scoring rate,
// scaled by fixture difficulty, venue, rotation risk and availability. All
// multipliers are non-negative and independent of form.
package prediction

import (
	"math"
	"slices"
	"time"
)

// Position is a playing position as numbered upstream.
type Position int

const (
	Goalkeeper Position = 1
	Defender   Position = 2
	Midfielder Position = 3
	Forward    Position = 4
)

// PlayerStats is what the engine knows about a player.
type PlayerStats struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	TeamID      int      `json:"teamId"`
	Position    Position `json:"position"`
	Form        float64  `json:"form"`
	TotalPoints int      `json:"totalPoints"`
	Price       float64  `json:"price"`
	Minutes     int      `json:"minutes"`
	Starts      int      `json:"starts"`
	// ChanceOfPlaying is a percentage; nil means no injury news.
	ChanceOfPlaying *int `json:"chanceOfPlaying,omitempty"`
}

// PlayerFixture is one upcoming match from the player's team's point of view.
type PlayerFixture struct {
	Gameweek       int        `json:"gameweek"`
	OpponentTeamID int        `json:"opponentTeamId"`
	IsHome         bool       `json:"isHome"`
	Kickoff        *time.Time `json:"kickoff,omitempty"`
}

// TeamStrength is a club's overall rating, roughly 1 (weak) to 5 (strong).
type TeamStrength struct {
	Overall int `json:"overall"`
}

// Strengths maps team id to rating.
type Strengths map[int]TeamStrength

// PredictionOutput is the prediction for one player in one gameweek.
type PredictionOutput struct {
	PlayerID        int                `json:"playerId"`
	Gameweek        int                `json:"gameweek"`
	PredictedPoints float64            `json:"predictedPoints"`
	Factors         map[string]float64 `json:"factors"`
}

// Schedule lists the gameweeks to predict and each team's fixtures in them.
type Schedule struct {
	Gameweeks []int                   `json:"gameweeks"`
	ByTeam    map[int][]PlayerFixture `json:"byTeam"`
}

// Weights tunes the model. The zero value predicts nothing; start from DefaultWeights.
type Weights struct {
	Appearance      float64 `json:"appearance"`
	Form            float64 `json:"form"`
	PointsPerStart  float64 `json:"pointsPerStart"`
	Difficulty      float64 `json:"difficulty"`
	MinFixture      float64 `json:"minFixture"`
	MaxFixture      float64 `json:"maxFixture"`
	HomeAdvantage   float64 `json:"homeAdvantage"`
	MinRotation     float64 `json:"minRotation"`
	DefaultStrength int     `json:"defaultStrength"`
}

// DefaultWeights weights form highest.
func DefaultWeights() Weights {
	return Weights{
		Appearance:      1.0,
		Form:            0.6,
		PointsPerStart:  0.25,
		Difficulty:      0.15,
		MinFixture:      0.4,
		MaxFixture:      1.6,
		HomeAdvantage:   0.1,
		MinRotation:     0.2,
		DefaultStrength: 3,
	}
}

// Engine predicts with a fixed set of weights. It is safe for concurrent use.
type Engine struct {
	weights Weights
}

// New creates an engine.
func New(w Weights) *Engine {
	return &Engine{weights: w}
}

var defaultEngine = New(DefaultWeights())

// Predict predicts with DefaultWeights.
func Predict(player PlayerStats, fixture PlayerFixture, strengths Strengths) PredictionOutput {
	return defaultEngine.Predict(player, fixture, strengths)
}

// PredictFutureGameweeks predicts with DefaultWeights.
func PredictFutureGameweeks(players []PlayerStats, schedule Schedule, strengths Strengths) map[int][]PredictionOutput {
	return defaultEngine.PredictFutureGameweeks(players, schedule, strengths)
}

// Predict returns the expected points for player in a single fixture.
func (e *Engine) Predict(player PlayerStats, fixture PlayerFixture, strengths Strengths) PredictionOutput {
	w := e.weights

	pointsPerStart := 0.0
	if player.Starts > 0 {
		pointsPerStart = float64(player.TotalPoints) / float64(player.Starts)
	}
	base := math.Max(0, w.Appearance+math.Max(0, w.Form)*player.Form+w.PointsPerStart*pointsPerStart)

	own := e.strength(strengths, player.TeamID)
	opp := e.strength(strengths, fixture.OpponentTeamID)
	fixtureFactor := clamp(1+math.Max(0, w.Difficulty)*float64(own-opp), math.Max(0, w.MinFixture), w.MaxFixture)

	homeFactor := 1.0
	if fixture.IsHome {
		homeFactor += math.Max(0, w.HomeAdvantage)
	}

	rotation := rotationFactor(player, w.MinRotation)

	availability := 1.0
	if player.ChanceOfPlaying != nil {
		availability = clamp(float64(*player.ChanceOfPlaying)/100, 0, 1)
	}

	points := base * fixtureFactor * homeFactor * rotation * availability

	return PredictionOutput{
		PlayerID:        player.ID,
		Gameweek:        fixture.Gameweek,
		PredictedPoints: math.Max(0, points),
		Factors: map[string]float64{
			"base":         base,
			"fixture":      fixtureFactor,
			"home":         homeFactor,
			"rotation":     rotation,
			"availability": availability,
		},
	}
}

// PredictFutureGameweeks predicts every player for every scheduled gameweek.
// A double gameweek sums its fixtures; a blank gameweek yields a zero
// prediction with the "blank" factor set.
func (e *Engine) PredictFutureGameweeks(players []PlayerStats, schedule Schedule, strengths Strengths) map[int][]PredictionOutput {
	out := make(map[int][]PredictionOutput, len(schedule.Gameweeks))
	for _, gw := range dedupe(schedule.Gameweeks) {
		preds := make([]PredictionOutput, 0, len(players))
		for _, p := range players {
			preds = append(preds, e.predictGameweek(p, gw, schedule.ByTeam[p.TeamID], strengths))
		}
		out[gw] = preds
	}
	return out
}

func (e *Engine) predictGameweek(p PlayerStats, gw int, fixtures []PlayerFixture, strengths Strengths) PredictionOutput {
	total := PredictionOutput{PlayerID: p.ID, Gameweek: gw, Factors: map[string]float64{}}
	n := 0
	for _, f := range fixtures {
		if f.Gameweek != gw {
			continue
		}
		pred := e.Predict(p, f, strengths)
		total.PredictedPoints += pred.PredictedPoints
		if n == 0 {
			total.Factors = pred.Factors
		}
		n++
	}
	switch n {
	case 0:
		total.Factors["blank"] = 1
	case 1:
	default:
		total.Factors["fixtures"] = float64(n)
	}
	return total
}

// CalculateTotalPredictedPoints sums every prediction whose gameweek is in
// gameweeks. Repeated gameweeks count once.
func CalculateTotalPredictedPoints(predictions map[int][]PredictionOutput, gameweeks []int) float64 {
	total := 0.0
	for _, gw := range dedupe(gameweeks) {
		for _, p := range predictions[gw] {
			total += p.PredictedPoints
		}
	}
	return total
}

// TotalsByPlayer sums each player's predictions over gameweeks.
func TotalsByPlayer(predictions map[int][]PredictionOutput, gameweeks []int) map[int]float64 {
	out := map[int]float64{}
	for _, gw := range dedupe(gameweeks) {
		for _, p := range predictions[gw] {
			out[p.PlayerID] += p.PredictedPoints
		}
	}
	return out
}

func (e *Engine) strength(strengths Strengths, teamID int) int {
	if s, ok := strengths[teamID]; ok && s.Overall > 0 {
		return s.Overall
	}
	return e.weights.DefaultStrength
}

// rotationFactor discounts players who rarely complete matches. Players who
// have never started get the floor.
func rotationFactor(p PlayerStats, floor float64) float64 {
	floor = clamp(floor, 0, 1)
	if p.Starts <= 0 || p.Minutes <= 0 {
		return floor
	}
	perStart := float64(p.Minutes) / float64(p.Starts)
	return clamp(perStart/90, floor, 1)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Min(math.Max(v, lo), hi)
}

func dedupe(gameweeks []int) []int {
	out := slices.Clone(gameweeks)
	slices.Sort(out)
	return slices.Compact(out)
}
