package scoring

const (
	tier2FreeDrinks    = 3
	tier2PointsPerOver = 5

	tier3BaseDrinks    = 3
	tier3PointsBase    = 3
	tier3PointsPerOver = 7
)

type DrinkingEvent struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Date   string `json:"date"`
	Tier   int    `json:"tier"`
	Drinks int    `json:"drinks"`
	Note   string `json:"note,omitempty"`
}

type PenaltyBreakdown struct {
	Total       float64 `json:"total"`
	Tier2       float64 `json:"tier2"`
	Tier3       float64 `json:"tier3"`
	Tier2Drinks int     `json:"tier2Drinks"`
	Tier3Drinks int     `json:"tier3Drinks"`
}

// AlcoholPenalty converts a day's drinking events into points deducted from
// the 0-100 diet score. Tier 1 events carry no penalty.
func AlcoholPenalty(events []DrinkingEvent) PenaltyBreakdown {
	var p PenaltyBreakdown
	for _, ev := range events {
		drinks := max(ev.Drinks, 0)
		switch ev.Tier {
		case 2:
			p.Tier2Drinks += drinks
		case 3:
			p.Tier3Drinks += drinks
		}
	}

	p.Tier2 = float64(max(p.Tier2Drinks-tier2FreeDrinks, 0) * tier2PointsPerOver)
	if p.Tier3Drinks <= tier3BaseDrinks {
		p.Tier3 = float64(p.Tier3Drinks * tier3PointsBase)
	} else {
		p.Tier3 = float64(tier3BaseDrinks*tier3PointsBase + (p.Tier3Drinks-tier3BaseDrinks)*tier3PointsPerOver)
	}
	p.Total = p.Tier2 + p.Tier3
	return p
}
