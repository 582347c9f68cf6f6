package scoring

import "github.com/Dosada05/tabletennis-scoring/models"

// ServingOrder is the rotation of serving positions for one game. Singles
// alternate between the two sides; doubles rotate through all four players.
func ServingOrder(first models.Side, doubles bool) []models.Side {
	base := first.Base()
	if !doubles {
		return []models.Side{base, base.Opponent()}
	}
	main, partner := positions(base)
	oppMain, oppPartner := positions(base.Opponent())
	if first == partner {
		main, partner = partner, main
	}
	return []models.Side{main, oppMain, partner, oppPartner}
}

// NextServer returns who serves the next rally of g. Each server has two
// serves; once both sides reach 10 the serve changes after every point. The
// first server of each game moves one step along the rotation.
func NextServer(g models.Game, first models.Side, doubles bool) models.Side {
	order := ServingOrder(first, doubles)
	offset := (g.GameNumber - 1) % len(order)

	total := g.TotalPoints()
	turn := total / 2
	if g.Side1Score >= DeuceThreshold && g.Side2Score >= DeuceThreshold {
		turn = DeuceThreshold + (total - 2*DeuceThreshold)
	}
	return order[(offset+turn)%len(order)]
}

func positions(base models.Side) (models.Side, models.Side) {
	if base == models.Side2 {
		return models.Side2Main, models.Side2Partner
	}
	return models.Side1Main, models.Side1Partner
}
