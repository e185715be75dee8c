package service

import (
	"wcl-enricher/internal/api"
	"wcl-enricher/internal/domain"
)

// ComputeBestKill walks encounterOrder from the deepest encounter back to the
// first and returns the first one with a kill, at its hardest difficulty.
// Progression depth beats difficulty: a Normal kill of the last boss outranks
// a Mythic kill of an earlier one.
func ComputeBestKill(progression *api.ZoneProgression, encounterOrder []int, encounterNames map[int]string) *domain.BestKill {
	if progression == nil {
		return nil
	}

	byID := make(map[int]api.EncounterProgression, len(progression.Encounters))
	for _, e := range progression.Encounters {
		byID[e.ID] = e
	}

	for i := len(encounterOrder) - 1; i >= 0; i-- {
		encounter, ok := byID[encounterOrder[i]]
		if !ok || len(encounter.Kills) == 0 {
			continue
		}

		hardest := domain.DifficultyUnknown
		for _, k := range encounter.Kills {
			if k.Difficulty.Rank() > hardest.Rank() {
				hardest = k.Difficulty
			}
		}
		if hardest == domain.DifficultyUnknown {
			continue
		}

		name := encounterNames[encounter.ID]
		if name == "" {
			name = encounter.Name
		}

		return &domain.BestKill{
			BossID:              encounter.ID,
			BossName:            name,
			Difficulty:          hardest,
			EncounterOrderIndex: i,
		}
	}

	return nil
}
