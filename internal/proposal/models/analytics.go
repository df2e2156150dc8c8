package models

import (
	id "concord/pkg/domain"
)

// RegionalAnalytics summarizes the proposals touching one jurisdiction.
// SyncHealth is the percentage of those proposals that are synchronized.
type RegionalAnalytics struct {
	Jurisdiction         id.Jurisdiction `json:"jurisdiction"`
	TotalProposals       int             `json:"total_proposals"`
	AverageParticipation float64         `json:"average_participation"`
	ByUrgency            map[Urgency]int `json:"by_urgency"`
	CrossDeckEnabled     int             `json:"cross_deck_enabled"`
	SyncHealth           float64         `json:"sync_health"`
}

// ComputeAnalytics aggregates proposals into regional analytics. It is a
// pure function over the slice it is given; callers pass the jurisdiction's
// proposals. An empty slice yields zero counts and rates.
func ComputeAnalytics(jurisdiction id.Jurisdiction, proposals []*RegionalProposal) RegionalAnalytics {
	analytics := RegionalAnalytics{
		Jurisdiction: jurisdiction,
		ByUrgency:    make(map[Urgency]int),
	}
	if len(proposals) == 0 {
		return analytics
	}

	var participation float64
	synchronized := 0
	for _, p := range proposals {
		analytics.TotalProposals++
		analytics.ByUrgency[p.Meta.Urgency]++
		participation += p.Tallies.Participation
		if p.CrossDeck.Enabled() {
			analytics.CrossDeckEnabled++
		}
		if p.SyncStatus == SyncSynchronized {
			synchronized++
		}
	}

	total := float64(analytics.TotalProposals)
	analytics.AverageParticipation = participation / total
	analytics.SyncHealth = float64(synchronized) / total * 100
	return analytics
}
