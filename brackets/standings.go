package brackets

import (
	"sort"

	"github.com/Dosada05/tabletennis-scoring/models"
)

// MatchResult is what standings need from one scheduled match. For team
// matches Side1Sets/Side2Sets count submatches won.
type MatchResult struct {
	Side1     int
	Side2     int
	Winner    *models.Side
	Side1Sets int
	Side2Sets int
	Completed bool
}

// ResultFromMatch reads a singles match; side IDs are its two participants.
func ResultFromMatch(m *models.Match) (MatchResult, bool) {
	p1, p2 := m.SidePlayers(models.Side1), m.SidePlayers(models.Side2)
	if len(p1) != 1 || len(p2) != 1 {
		return MatchResult{}, false
	}
	return MatchResult{
		Side1:     p1[0],
		Side2:     p2[0],
		Winner:    m.Winner,
		Side1Sets: m.SetTally.Side1,
		Side2Sets: m.SetTally.Side2,
		Completed: m.Status == models.MatchStatusCompleted,
	}, true
}

func ResultFromTeamMatch(tm *models.TeamMatch) MatchResult {
	return MatchResult{
		Side1:     tm.Team1ID,
		Side2:     tm.Team2ID,
		Winner:    tm.Winner,
		Side1Sets: tm.Tally.Team1,
		Side2Sets: tm.Tally.Team2,
		Completed: tm.Status == models.MatchStatusCompleted,
	}
}

// ComputeStandings derives the table from results alone. Only completed
// results with a decided winner count, and results naming someone outside
// participants are ignored. Ranking is points, then set difference, then
// sets won; remaining ties go to the lower participant ID so the output does
// not depend on input order.
func ComputeStandings(participants []int, results []MatchResult, settings models.RoundRobinSettings) []models.Standing {
	settings = settings.Normalize()

	index := make(map[int]*models.Standing, len(participants))
	for _, id := range participants {
		if _, ok := index[id]; !ok {
			index[id] = &models.Standing{ParticipantID: id}
		}
	}

	for _, r := range results {
		if !r.Completed || r.Winner == nil {
			continue
		}
		a, b := index[r.Side1], index[r.Side2]
		if a == nil || b == nil || r.Side1 == r.Side2 {
			continue
		}
		winner, loser := a, b
		switch r.Winner.Base() {
		case models.Side1:
		case models.Side2:
			winner, loser = b, a
		default:
			continue
		}

		a.Played++
		b.Played++
		a.SetsWon += r.Side1Sets
		a.SetsLost += r.Side2Sets
		b.SetsWon += r.Side2Sets
		b.SetsLost += r.Side1Sets
		winner.Won++
		loser.Lost++
	}

	standings := make([]models.Standing, 0, len(index))
	for _, s := range index {
		s.Points = s.Won*settings.PointsForWin + s.Lost*settings.PointsForLoss + s.Draws*settings.PointsForDraw
		standings = append(standings, *s)
	}
	sort.Slice(standings, func(i, j int) bool {
		x, y := standings[i], standings[j]
		if x.Points != y.Points {
			return x.Points > y.Points
		}
		if x.SetDifference() != y.SetDifference() {
			return x.SetDifference() > y.SetDifference()
		}
		if x.SetsWon != y.SetsWon {
			return x.SetsWon > y.SetsWon
		}
		return x.ParticipantID < y.ParticipantID
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

// SettleRounds flags every round whose matches are all finished and reports
// whether the whole schedule is done. A round with no matches (all byes) is
// complete.
func SettleRounds(rounds []models.Round, finished func(matchID string) bool) bool {
	all := len(rounds) > 0
	for i := range rounds {
		done := true
		for _, id := range rounds[i].MatchIDs {
			if !finished(id) {
				done = false
				break
			}
		}
		rounds[i].Completed = done
		all = all && done
	}
	return all
}
