package competition

import (
	"math"
	"sort"
)

// PlayerRating rating information for one strategy.
type PlayerRating struct {
	Name          string
	Rating        float64
	MatchesPlayed int
	Wins          int
	Losses        int
	Draws         int
}

// WinRate fraction of matches won, 0 before any match.
func (p PlayerRating) WinRate() float64 {
	if p.MatchesPlayed == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.MatchesPlayed)
}

// EloRating Elo rating system with margin-of-victory adjustment.
// The K-factor shrinks as a player accumulates matches; the margin
// multiplier scales updates logarithmically with the score gap.
type EloRating struct {
	InitialRating float64
	KFactor       float64
	MOVFactor     float64 // 0 = ignore margin, 1 = full linear sensitivity

	ratings map[string]*PlayerRating
}

// NewEloRating creates a rating table with the usual chess defaults.
func NewEloRating() *EloRating {
	return &EloRating{
		InitialRating: 1500,
		KFactor:       32,
		MOVFactor:     0.5,
		ratings:       make(map[string]*PlayerRating),
	}
}

// Rating returns (and lazily creates) the rating entry for a player.
func (e *EloRating) Rating(name string) *PlayerRating {
	if r, ok := e.ratings[name]; ok {
		return r
	}
	r := &PlayerRating{Name: name, Rating: e.InitialRating}
	e.ratings[name] = r
	return r
}

// ExpectedScore expected score of A against B, in (0, 1).
func (e *EloRating) ExpectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400))
}

// kFor new players get a boosted K so they calibrate faster.
func (e *EloRating) kFor(p *PlayerRating) float64 {
	switch {
	case p.MatchesPlayed < 10:
		return e.KFactor * 1.5
	case p.MatchesPlayed < 30:
		return e.KFactor
	default:
		return e.KFactor * 0.75
	}
}

// marginMultiplier >= 1, logarithmic so lopsided scores don't explode.
func (e *EloRating) marginMultiplier(winnerScore, loserScore, totalGames int) float64 {
	if totalGames == 0 {
		return 1
	}
	margin := float64(winnerScore-loserScore) / float64(totalGames)
	return 1 + e.MOVFactor*math.Log(1+margin*2)
}

// UpdateRatings applies one match outcome (games won by each side)
// and returns the new ratings.
func (e *EloRating) UpdateRatings(playerA, playerB string, scoreA, scoreB int) (float64, float64) {
	ratingA := e.Rating(playerA)
	ratingB := e.Rating(playerB)

	totalGames := scoreA + scoreB
	if totalGames == 0 {
		return ratingA.Rating, ratingB.Rating
	}

	var actualA, actualB, multiplier float64
	switch {
	case scoreA > scoreB:
		actualA, actualB = 1, 0
		ratingA.Wins++
		ratingB.Losses++
		multiplier = e.marginMultiplier(scoreA, scoreB, totalGames)
	case scoreB > scoreA:
		actualA, actualB = 0, 1
		ratingA.Losses++
		ratingB.Wins++
		multiplier = e.marginMultiplier(scoreB, scoreA, totalGames)
	default:
		actualA, actualB = 0.5, 0.5
		ratingA.Draws++
		ratingB.Draws++
		multiplier = 1
	}

	expectedA := e.ExpectedScore(ratingA.Rating, ratingB.Rating)
	expectedB := 1 - expectedA

	kA := e.kFor(ratingA)
	kB := e.kFor(ratingB)

	ratingA.Rating += kA * multiplier * (actualA - expectedA)
	ratingB.Rating += kB * multiplier * (actualB - expectedB)

	ratingA.MatchesPlayed++
	ratingB.MatchesPlayed++

	return ratingA.Rating, ratingB.Rating
}

// Leaderboard all players sorted by rating, highest first.
func (e *EloRating) Leaderboard() []PlayerRating {
	board := make([]PlayerRating, 0, len(e.ratings))
	for _, r := range e.ratings {
		board = append(board, *r)
	}
	sort.Slice(board, func(i, j int) bool {
		if board[i].Rating != board[j].Rating {
			return board[i].Rating > board[j].Rating
		}
		return board[i].Name < board[j].Name
	})
	return board
}
