package euchre

// ScoreHand returns whether the makers score and how many points the
// scoring side gets.
func ScoreHand(makerTricks int, goingAlone bool) (makersScore bool, points int) {
	switch {
	case makerTricks == TricksPerHand && goingAlone:
		return true, 4
	case makerTricks == TricksPerHand:
		return true, 2
	case makerTricks >= 3:
		return true, 1
	default:
		return false, 2
	}
}

func (s *Session) scoreHandLocked() {
	g := s.state
	maker := *g.Maker
	makerTricks := g.TeamTricks(maker)
	makersScore, points := ScoreHand(makerTricks, g.GoingAlone)

	scoring := maker
	if !makersScore {
		scoring = maker.Opponent()
	}
	g.addScore(scoring, points)

	switch {
	case makerTricks == TricksPerHand && g.GoingAlone:
		s.logf("%s's team takes all five tricks!", g.PlayerGoingAlone.Title())
	case makerTricks == TricksPerHand:
		s.logf("%s takes all five tricks!", maker.DisplayName())
	case makersScore:
		s.logf("%s makes it with %d tricks", maker.DisplayName(), makerTricks)
	default:
		s.logf("%s euchred %s!", scoring.DisplayName(), maker.DisplayName())
	}
	s.logf("%s scores %d. Score: Team 1 %d, Team 2 %d", scoring.DisplayName(), points, g.Team1Score, g.Team2Score)

	g.LastHand = &HandResult{
		HandNumber:  g.HandNumber,
		Dealer:      g.Dealer,
		Trump:       g.TrumpSuit(),
		Maker:       maker,
		Caller:      g.PlayerWhoCalledTrump,
		GoingAlone:  g.GoingAlone,
		MakerTricks: makerTricks,
		ScoringTeam: scoring,
		Points:      points,
		Euchred:     !makersScore,
		Team1Score:  g.Team1Score,
		Team2Score:  g.Team2Score,
		Tricks:      cloneTricks(g.Tricks),
	}
	s.emit(EventHandScored)

	if g.Team1Score >= g.WinningScore || g.Team2Score >= g.WinningScore {
		g.Winner = &scoring
		g.Phase = PhaseGameOver
		g.CurrentPlayer = ""
		s.logf("%s wins the game %d to %d", scoring.DisplayName(), g.Score(scoring), g.Score(scoring.Opponent()))
		s.emit(EventGameOver)
		return
	}
	s.startNewHandLocked()
}
