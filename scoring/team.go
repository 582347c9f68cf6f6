package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/Dosada05/tabletennis-scoring/models"
)

type tie struct {
	kind  models.MatchType
	side1 []models.Role
	side2 []models.Role
}

type formatRules struct {
	ties   []tie
	clinch int
}

func singles(a, x models.Role) tie {
	return tie{kind: models.MatchTypeSingles, side1: []models.Role{a}, side2: []models.Role{x}}
}

func doubles(a, b, x, y models.Role) tie {
	return tie{kind: models.MatchTypeDoubles, side1: []models.Role{a, b}, side2: []models.Role{x, y}}
}

var teamFormats = map[models.TeamFormat]formatRules{
	models.FormatSwaythling: {
		ties: []tie{
			singles(models.RoleA, models.RoleX),
			singles(models.RoleB, models.RoleY),
			singles(models.RoleC, models.RoleZ),
			singles(models.RoleA, models.RoleY),
			singles(models.RoleB, models.RoleX),
		},
		clinch: 3,
	},
	models.FormatSingleDoubleSingle: {
		ties: []tie{
			singles(models.RoleA, models.RoleX),
			doubles(models.RoleA, models.RoleB, models.RoleX, models.RoleY),
			singles(models.RoleB, models.RoleY),
		},
		clinch: 2,
	},
	models.FormatFiveSinglesFull: {
		ties: []tie{
			singles(models.RoleA, models.RoleX),
			singles(models.RoleB, models.RoleY),
			singles(models.RoleC, models.RoleZ),
			singles(models.RoleD, models.RoleP),
			singles(models.RoleE, models.RoleQ),
		},
		clinch: 3,
	},
	models.FormatThreeSingles: {
		ties: []tie{
			singles(models.RoleA, models.RoleX),
			singles(models.RoleB, models.RoleY),
			singles(models.RoleC, models.RoleZ),
		},
		clinch: 2,
	},
}

var (
	team1Roles = []models.Role{models.RoleA, models.RoleB, models.RoleC, models.RoleD, models.RoleE}
	team2Roles = []models.Role{models.RoleX, models.RoleY, models.RoleZ, models.RoleP, models.RoleQ}
)

func lookupFormat(format models.TeamFormat) (formatRules, error) {
	rules, ok := teamFormats[format]
	if !ok {
		return formatRules{}, fmt.Errorf("%w: %q", ErrUnknownTeamFormat, format)
	}
	return rules, nil
}

// TieLayout describes one submatch of a format by roles only.
type TieLayout struct {
	Number     int              `json:"number"`
	Type       models.MatchType `json:"type"`
	Side1Roles []models.Role    `json:"side1_roles"`
	Side2Roles []models.Role    `json:"side2_roles"`
}

// TeamFormats lists the supported formats sorted by name.
func TeamFormats() []models.TeamFormat {
	formats := make([]models.TeamFormat, 0, len(teamFormats))
	for f := range teamFormats {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// Layout returns the submatch order of format.
func Layout(format models.TeamFormat) ([]TieLayout, error) {
	rules, err := lookupFormat(format)
	if err != nil {
		return nil, err
	}
	layout := make([]TieLayout, 0, len(rules.ties))
	for i, t := range rules.ties {
		layout = append(layout, TieLayout{
			Number:     i + 1,
			Type:       t.kind,
			Side1Roles: append([]models.Role(nil), t.side1...),
			Side2Roles: append([]models.Role(nil), t.side2...),
		})
	}
	return layout, nil
}

// ClinchThreshold is the number of submatch wins that decides a team match.
func ClinchThreshold(format models.TeamFormat) (int, error) {
	rules, err := lookupFormat(format)
	if err != nil {
		return 0, err
	}
	return rules.clinch, nil
}

// RequiredRoles lists, in order of first appearance, the roles each team must
// fill for format.
func RequiredRoles(format models.TeamFormat) (team1, team2 []models.Role, err error) {
	rules, err := lookupFormat(format)
	if err != nil {
		return nil, nil, err
	}
	seen := make(map[models.Role]bool)
	for _, t := range rules.ties {
		for _, r := range t.side1 {
			if !seen[r] {
				seen[r] = true
				team1 = append(team1, r)
			}
		}
		for _, r := range t.side2 {
			if !seen[r] {
				seen[r] = true
				team2 = append(team2, r)
			}
		}
	}
	return team1, team2, nil
}

// ValidateLineup checks role assignments when a team sets its line-up, so a
// bad roster fails here rather than during submatch generation.
func ValidateLineup(format models.TeamFormat, team1, team2 models.RoleAssignments) error {
	need1, need2, err := RequiredRoles(format)
	if err != nil {
		return err
	}
	if err := validateTeamRoles("team1", team1, team1Roles, need1); err != nil {
		return err
	}
	return validateTeamRoles("team2", team2, team2Roles, need2)
}

func validateTeamRoles(team string, assigned models.RoleAssignments, allowed, required []models.Role) error {
	players := make(map[int]models.Role, len(assigned))
	for role, playerID := range assigned {
		if !containsRole(allowed, role) {
			return fmt.Errorf("%w: %s cannot use role %q", ErrInvalidRole, team, role)
		}
		if other, dup := players[playerID]; dup {
			return fmt.Errorf("%w: %s player %d holds roles %q and %q", ErrInvalidRole, team, playerID, other, role)
		}
		players[playerID] = role
	}
	for _, role := range required {
		if _, ok := assigned[role]; !ok {
			return fmt.Errorf("%w: %s role %q", ErrMissingRoleAssignment, team, role)
		}
	}
	return nil
}

// BuildSubMatches derives the submatch list of a format from both teams'
// role assignments. Either every submatch is built or none is.
func BuildSubMatches(format models.TeamFormat, team1, team2 models.RoleAssignments, numberOfSets int) ([]models.SubMatch, error) {
	rules, err := lookupFormat(format)
	if err != nil {
		return nil, err
	}
	if !ValidNumberOfSets(numberOfSets) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidNumberOfSets, numberOfSets)
	}

	subs := make([]models.SubMatch, 0, len(rules.ties))
	for i, t := range rules.ties {
		p1, err := resolveRoles("team1", team1, t.side1)
		if err != nil {
			return nil, err
		}
		p2, err := resolveRoles("team2", team2, t.side2)
		if err != nil {
			return nil, err
		}
		subs = append(subs, models.SubMatch{
			Number:       i + 1,
			Type:         t.kind,
			Side1Roles:   append([]models.Role(nil), t.side1...),
			Side2Roles:   append([]models.Role(nil), t.side2...),
			Side1Players: p1,
			Side2Players: p2,
			Scoresheet:   models.NewScoresheet(numberOfSets),
		})
	}
	return subs, nil
}

func resolveRoles(team string, assigned models.RoleAssignments, roles []models.Role) ([]int, error) {
	players := make([]int, 0, len(roles))
	for _, role := range roles {
		id, ok := assigned[role]
		if !ok {
			return nil, fmt.Errorf("%w: %s role %q", ErrMissingRoleAssignment, team, role)
		}
		players = append(players, id)
	}
	return players, nil
}

// GenerateSubMatches fills an empty team match with its submatches. A team
// match that already has submatches is returned untouched.
func GenerateSubMatches(tm *models.TeamMatch) ([]models.SubMatch, error) {
	if len(tm.SubMatches) > 0 {
		return tm.SubMatches, nil
	}
	subs, err := BuildSubMatches(tm.Format, tm.Team1Roles, tm.Team2Roles, tm.NumberOfSets)
	if err != nil {
		return nil, err
	}
	tm.SubMatches = subs
	tm.CurrentSubMatch = 0
	tm.Tally = models.TeamTally{}
	return tm.SubMatches, nil
}

// RecomputeTeamTally counts decided submatches per team.
func RecomputeTeamTally(subs []models.SubMatch) models.TeamTally {
	var tally models.TeamTally
	for _, s := range subs {
		if s.Status != models.MatchStatusCompleted || s.Winner == nil {
			continue
		}
		switch s.Winner.Base() {
		case models.Side1:
			tally.Team1++
		case models.Side2:
			tally.Team2++
		}
	}
	return tally
}

// RecordSubMatchResult books the result of one submatch on the team match and
// completes the team match once a team reaches the clinch threshold. A
// submatch without a scored result (walkover, result entered after the fact)
// is closed with the given winner.
func RecordSubMatchResult(tm *models.TeamMatch, index int, winner models.Side, now time.Time) error {
	base := winner.Base()
	if base == "" {
		return fmt.Errorf("%w: %q", ErrInvalidSide, winner)
	}
	if index < 0 || index >= len(tm.SubMatches) {
		return fmt.Errorf("%w: index %d", ErrSubMatchNotFound, index)
	}
	if err := ensurePlayable(tm.Status); err != nil {
		return err
	}
	if _, err := lookupFormat(tm.Format); err != nil {
		return err
	}

	sub := &tm.SubMatches[index]
	if sub.Status == models.MatchStatusCancelled {
		return fmt.Errorf("%w: submatch %d", ErrMatchNotActive, sub.Number)
	}
	if sub.Winner != nil && *sub.Winner != base {
		return fmt.Errorf("%w: submatch %d was won by %s", ErrSubMatchNotDecided, sub.Number, *sub.Winner)
	}
	if sub.Winner == nil {
		sub.Winner = models.SidePtr(base)
		sub.Status = models.MatchStatusCompleted
		done := now
		sub.CompletedAt = &done
	}

	if tm.Status == models.StatusScheduled {
		tm.Status = models.StatusInProgress
		started := now
		tm.StartedAt = &started
	}
	tm.CurrentSubMatch = min(index+1, len(tm.SubMatches)-1)
	settleTeamMatch(tm, now)
	return nil
}

// ResetSubMatch mirrors ResetGame/ResetMatch for one submatch: full resets the
// whole submatch, otherwise only its current game. A team result that
// depended on the submatch is reverted.
func ResetSubMatch(tm *models.TeamMatch, index int, full bool) error {
	if index < 0 || index >= len(tm.SubMatches) {
		return fmt.Errorf("%w: index %d", ErrSubMatchNotFound, index)
	}
	if tm.Status == models.MatchStatusCancelled {
		return ErrMatchNotActive
	}

	sub := &tm.SubMatches[index]
	if full {
		ResetMatch(&sub.Scoresheet)
	} else if err := ResetGame(&sub.Scoresheet, sub.CurrentGame); err != nil {
		return err
	}

	if _, clinched := settleTeamMatch(tm, time.Time{}); !clinched {
		tm.CurrentSubMatch = min(index, tm.CurrentSubMatch)
	}
	return nil
}

// settleTeamMatch recomputes the team tally and completes or reopens the team
// match to match it.
func settleTeamMatch(tm *models.TeamMatch, now time.Time) (models.Side, bool) {
	tm.Tally = RecomputeTeamTally(tm.SubMatches)
	if tm.Status == models.MatchStatusCancelled {
		return "", false
	}
	clinch, err := ClinchThreshold(tm.Format)
	if err != nil {
		return "", false
	}

	var winner models.Side
	switch {
	case tm.Tally.Team1 >= clinch:
		winner = models.Side1
	case tm.Tally.Team2 >= clinch:
		winner = models.Side2
	}
	if winner != "" {
		if tm.Status != models.MatchStatusCompleted || tm.Winner == nil || *tm.Winner != winner {
			tm.Status = models.MatchStatusCompleted
			tm.Winner = models.SidePtr(winner)
			teamID := tm.TeamID(winner)
			tm.WinnerTeamID = &teamID
			if !now.IsZero() {
				done := now
				tm.CompletedAt = &done
			}
		}
		return winner, true
	}

	if tm.Status == models.MatchStatusCompleted || tm.Winner != nil {
		tm.Status = models.StatusInProgress
		tm.Winner = nil
		tm.WinnerTeamID = nil
		tm.CompletedAt = nil
	}
	return "", false
}

func containsRole(roles []models.Role, role models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
