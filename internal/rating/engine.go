package rating

import (
	"errors"
	"math"
	"time"

	"metaserver/backend/internal/models"

	"gorm.io/gorm"
)

// WinnerDraw is the winner sentinel for a drawn match.
const WinnerDraw = -1

const (
	minTeams        = 2
	maxTeams        = 4
	maxFieldPlayers = 32
)

var (
	ErrBadTeamCount  = errors.New("a match needs between 2 and 4 teams")
	ErrBadRosterSize = errors.New("each team needs between 1 and 32 field players")
	ErrRosterOverlap = errors.New("team rosters must be disjoint")
	ErrBadWinner     = errors.New("winner must be a participating team id or the draw sentinel")
)

// FieldPlayer is one rostered player in a match update. Game servers report
// unregistered players (bots, guests) with a zero or negative user id; those
// count toward team means but are never persisted.
type FieldPlayer struct {
	UserID int64 `json:"user_id"`
}

// Team is one side of a reported match.
type Team struct {
	ID           int           `json:"id"`
	FieldPlayers []FieldPlayer `json:"field_players"`
	CommanderID  int64         `json:"commander_id"`
}

// MatchUpdate is a single atomic report of a completed match.
type MatchUpdate struct {
	Teams  []Team `json:"teams"`
	Winner int    `json:"winner"`
}

// Engine applies match results to per-(user, server) stats rows.
type Engine struct {
	db     *gorm.DB
	params Params
}

// NewEngine creates a rating engine on top of db.
func NewEngine(db *gorm.DB, params Params) *Engine {
	return &Engine{db: db, params: params}
}

// player is a rostered participant during one match update. Stats is nil for
// unregistered players, which exist only for the team mean.
type player struct {
	rating float64
	stats  *models.UserStats
}

// ApplyMatchResult updates ratings and counters for every registered
// participant of one match. The whole read-compute-write cycle runs in a
// single transaction: either all rows are updated or none are.
func (e *Engine) ApplyMatchResult(serverID uint, m MatchUpdate) error {
	if err := validate(m); err != nil {
		return err
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		// Resolved stats rows shared across roles, keyed by user id, so a
		// commander who also plays in the field gets one row.
		resolved := make(map[int64]*models.UserStats)

		playersPerTeam := make(map[int][]*player, len(m.Teams))
		commanders := make(map[int]*models.UserStats, len(m.Teams))
		for _, team := range m.Teams {
			for _, fp := range team.FieldPlayers {
				stats, err := e.resolve(tx, resolved, fp.UserID, serverID, now)
				if err != nil {
					return err
				}
				p := &player{rating: float64(e.params.Baseline), stats: stats}
				if stats != nil {
					p.rating = float64(stats.SkillRating)
				}
				playersPerTeam[team.ID] = append(playersPerTeam[team.ID], p)
			}
			stats, err := e.resolve(tx, resolved, team.CommanderID, serverID, now)
			if err != nil {
				return err
			}
			if stats != nil {
				commanders[team.ID] = stats
			}
		}

		meanPerTeam := make(map[int]float64, len(m.Teams))
		for teamID, players := range playersPerTeam {
			ratings := make([]float64, len(players))
			for i, p := range players {
				ratings[i] = p.rating
			}
			meanPerTeam[teamID] = meanRating(ratings)
		}

		for teamID, players := range playersPerTeam {
			achieved := achievedScore(teamID, m.Winner)
			oppMean := meanOpponentRating(teamID, m.Winner, meanPerTeam)

			for _, p := range players {
				newRating := SkillRating(e.params, p.rating, meanPerTeam[teamID], oppMean, achieved)
				if p.stats == nil {
					continue
				}
				p.stats.SkillRating = int(math.Round(newRating))
				p.stats.LastSeen = now
				p.stats.MatchesPlayedField++
				if achieved == 1 {
					p.stats.MatchesWonField++
				}
			}

			if stats, ok := commanders[teamID]; ok {
				stats.LastSeen = now
				stats.MatchesPlayedCommand++
				if achieved == 1 {
					stats.MatchesWonCommand++
				}
			}
		}

		for _, stats := range resolved {
			if stats == nil {
				continue
			}
			if err := tx.Save(stats).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// resolve returns the stats row for userID on serverID, creating a fresh row
// at the baseline rating for first-time players. Non-positive user ids are
// never persisted and resolve to nil.
func (e *Engine) resolve(tx *gorm.DB, resolved map[int64]*models.UserStats, userID int64, serverID uint, now time.Time) (*models.UserStats, error) {
	if userID <= 0 {
		return nil, nil
	}
	if stats, ok := resolved[userID]; ok {
		return stats, nil
	}

	var stats models.UserStats
	err := tx.Where("user_id = ? AND server_id = ?", userID, serverID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.UserStats{
			UserID:      uint(userID),
			ServerID:    serverID,
			FirstSeen:   now,
			LastSeen:    now,
			SkillRating: e.params.Baseline,
		}
		err = tx.Create(&stats).Error
	}
	if err != nil {
		return nil, err
	}
	resolved[userID] = &stats
	return &stats, nil
}

// GetUserStats fetches the stats row for (userID, serverID). The second
// return value is false when the user has never been seen on the server.
func (e *Engine) GetUserStats(userID, serverID uint) (*models.UserStats, bool, error) {
	var stats models.UserStats
	err := e.db.Where("user_id = ? AND server_id = ?", userID, serverID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &stats, true, nil
}

// GetUserStatsBatch fetches stats rows for the given users on serverID.
// Users never seen on the server are simply absent from the result; no
// zero-valued rows are synthesized.
func (e *Engine) GetUserStatsBatch(userIDs []uint, serverID uint) ([]models.UserStats, error) {
	var stats []models.UserStats
	err := e.db.Where("user_id IN ? AND server_id = ?", userIDs, serverID).Find(&stats).Error
	return stats, err
}

func validate(m MatchUpdate) error {
	if len(m.Teams) < minTeams || len(m.Teams) > maxTeams {
		return ErrBadTeamCount
	}

	seenTeams := make(map[int]bool, len(m.Teams))
	seenUsers := make(map[int64]bool)
	for _, team := range m.Teams {
		if seenTeams[team.ID] {
			return ErrBadTeamCount
		}
		seenTeams[team.ID] = true

		if len(team.FieldPlayers) < 1 || len(team.FieldPlayers) > maxFieldPlayers {
			return ErrBadRosterSize
		}
		for _, fp := range team.FieldPlayers {
			// Sentinel ids for unregistered players may repeat freely.
			if fp.UserID <= 0 {
				continue
			}
			if seenUsers[fp.UserID] {
				return ErrRosterOverlap
			}
			seenUsers[fp.UserID] = true
		}
	}

	if m.Winner != WinnerDraw && !seenTeams[m.Winner] {
		return ErrBadWinner
	}
	return nil
}

// achievedScore is 1 for the winning team, 0 for a losing team, and 0.5 for
// every team in a draw.
func achievedScore(teamID, winner int) float64 {
	if winner == WinnerDraw {
		return 0.5
	}
	if teamID == winner {
		return 1
	}
	return 0
}

// meanOpponentRating is the winner's team mean when the match has a winner,
// for winners and losers alike. In a draw it is the unweighted average of
// the other teams' means.
func meanOpponentRating(teamID, winner int, meanPerTeam map[int]float64) float64 {
	if winner != WinnerDraw {
		return meanPerTeam[winner]
	}
	var sum float64
	for id, mean := range meanPerTeam {
		if id != teamID {
			sum += mean
		}
	}
	return sum / float64(len(meanPerTeam)-1)
}
