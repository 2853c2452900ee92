// internal/model/elo.go
package model

// Elo is one of the five fixed experience ranks. The table is compiled in,
// ordered by Rank, with strictly increasing thresholds starting at zero.
type Elo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Rank      int    `json:"rank"`
	Threshold int    `json:"threshold"`
}

var Elos = []Elo{
	{ID: "bronze", Name: "Bronze", Rank: 0, Threshold: 0},
	{ID: "prata", Name: "Prata", Rank: 1, Threshold: 1000},
	{ID: "ouro", Name: "Ouro", Rank: 2, Threshold: 5000},
	{ID: "platina", Name: "Platina", Rank: 3, Threshold: 15000},
	{ID: "diamante", Name: "Diamante", Rank: 4, Threshold: 50000},
}

// ResolveElo returns the highest elo whose threshold is <= totalXP. The
// first threshold is zero, so the scan always resolves.
func ResolveElo(totalXP int) Elo {
	for i := len(Elos) - 1; i >= 0; i-- {
		if Elos[i].Threshold <= totalXP {
			return Elos[i]
		}
	}
	return Elos[0]
}

// NextElo returns the elo one rank above e, or false at the top of the table.
func NextElo(e Elo) (Elo, bool) {
	if e.Rank+1 < len(Elos) {
		return Elos[e.Rank+1], true
	}
	return Elo{}, false
}

// EloProgress resolves the current elo for totalXP and computes progress
// toward the next one. At the max elo progress is 100 and xpForNext is 0.
func EloProgress(totalXP int) (current Elo, next *Elo, progress float64, xpForNext int) {
	current = ResolveElo(totalXP)
	n, ok := NextElo(current)
	if !ok {
		return current, nil, 100, 0
	}
	progress = float64(totalXP-current.Threshold) / float64(n.Threshold-current.Threshold) * 100
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return current, &n, progress, n.Threshold - totalXP
}
