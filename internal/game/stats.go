package game

import "fmt"

// AgentStats accumulates what one agent did over a match.
type AgentStats struct {
	ShotsFired     int
	Hits           int
	GrenadesThrown int
	Heals          int
	Deliveries     int
	DamageTaken    int
	Stalls         int
	Distance       float64 // cells walked
}

// Accuracy is hits per shot fired, or 0 before the first shot.
func (s AgentStats) Accuracy() float64 {
	if s.ShotsFired == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.ShotsFired)
}

func (s *AgentStats) add(o AgentStats) {
	s.ShotsFired += o.ShotsFired
	s.Hits += o.Hits
	s.GrenadesThrown += o.GrenadesThrown
	s.Heals += o.Heals
	s.Deliveries += o.Deliveries
	s.DamageTaken += o.DamageTaken
	s.Stalls += o.Stalls
	s.Distance += o.Distance
}

// TeamStats rolls one side's agent stats up for the batch reporter.
type TeamStats struct {
	Team             Team
	Alive            int
	Deaths           int
	StrategicChanges int
	Reports          [reportKindCount]int
	AgentStats
}

func (ts TeamStats) String() string {
	return fmt.Sprintf("%s alive=%d deaths=%d shots=%d hits=%d grenades=%d heals=%d deliveries=%d changes=%d",
		ts.Team, ts.Alive, ts.Deaths, ts.ShotsFired, ts.Hits, ts.GrenadesThrown,
		ts.Heals, ts.Deliveries, ts.StrategicChanges)
}

// TeamStats aggregates the roster of team.
func (w *World) TeamStats(team Team) TeamStats {
	ts := TeamStats{Team: team}
	for _, a := range w.roster[team] {
		if a.Alive() {
			ts.Alive++
		} else {
			ts.Deaths++
		}
		ts.add(a.stats)
	}
	if c := w.commanders[team]; c != nil {
		ts.StrategicChanges = c.StrategicChanges
	}
	ts.Reports = w.radio[team].sent
	return ts
}
