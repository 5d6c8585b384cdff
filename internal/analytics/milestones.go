package analytics

// Milestone is a fixed lifetime tip-count achievement.
type Milestone struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
	Level string `json:"level"`
}

// Milestones in ascending threshold order.
var Milestones = []Milestone{
	{Count: 10, Name: "First Steps", Level: "bronze"},
	{Count: 25, Name: "Rising Star", Level: "bronze"},
	{Count: 50, Name: "Supporter Magnet", Level: "silver"},
	{Count: 100, Name: "Century Club", Level: "silver"},
	{Count: 250, Name: "Community Hero", Level: "gold"},
	{Count: 500, Name: "Tip Legend", Level: "gold"},
	{Count: 1000, Name: "Stellar Master", Level: "platinum"},
}

// MilestoneProgress summarizes achieved milestones and the road to the
// next one for a given lifetime tip count.
type MilestoneProgress struct {
	TipCount int         `json:"tip_count"`
	Achieved []Milestone `json:"achieved"`
	Next     *Milestone  `json:"next,omitempty"`
	// Percent toward the next milestone, 100 when all are achieved.
	Percent int `json:"percent"`
}

func ProgressFor(tipCount int) MilestoneProgress {
	p := MilestoneProgress{TipCount: tipCount, Achieved: []Milestone{}, Percent: 100}
	for i, m := range Milestones {
		if tipCount >= m.Count {
			p.Achieved = append(p.Achieved, m)
			continue
		}
		next := Milestones[i]
		p.Next = &next
		p.Percent = tipCount * 100 / next.Count
		break
	}
	return p
}

// CrossedMilestone returns the milestone whose threshold sits strictly
// between the previous and the new tip count, if any. Used to fire a
// one-shot event when a tip lands exactly on an achievement.
func CrossedMilestone(prevCount, newCount int) *Milestone {
	for _, m := range Milestones {
		if prevCount < m.Count && newCount >= m.Count {
			crossed := m
			return &crossed
		}
	}
	return nil
}
