package services

import (
	"fmt"

	"github.com/mrcoldpotato/talentflow-v2/internal/models"
)

// NOTE: share of a stage is the percentage of the pipeline sitting in it,
// truncated to a whole number.
// Share = Count(stage) / Total * 100

type StageCounts struct {
	// Candidates in the pipeline
	Total int
	// Candidates per stage
	Counts map[models.Stage]int
}

func (c *StageCounts) Share(stage models.Stage) (int, error) {
	if c.Total == 0 {
		return 0, nil
	}

	// the stages can never hold more candidates than the pipeline does.
	counted := 0
	for _, n := range c.Counts {
		counted += n
	}
	if c.Total < counted {
		return 0, fmt.Errorf("cannot compute share with total less than the staged candidates: %d total < %d staged", c.Total, counted)
	}

	return int(float64(c.Counts[stage]) / float64(c.Total) * 100), nil
}

type BoardColumn struct {
	Stage      models.Stage       `json:"stage"`
	Count      int                `json:"count"`
	Share      int                `json:"share"`
	Candidates []models.Candidate `json:"candidates"`
}

// Board is the kanban view of a pipeline, one column per stage in pipeline order.
type Board struct {
	Total   int           `json:"total"`
	Columns []BoardColumn `json:"columns"`
}

// BuildBoard groups candidates by stage. Candidates keep their relative order.
func BuildBoard(candidates []models.Candidate) (*Board, error) {
	grouped := make(map[models.Stage][]models.Candidate, len(models.Stages))
	counts := StageCounts{Total: len(candidates), Counts: make(map[models.Stage]int, len(models.Stages))}

	for _, c := range candidates {
		if !c.Stage.Valid() {
			return nil, fmt.Errorf("candidate %s has unknown stage %q", c.ID, c.Stage)
		}
		grouped[c.Stage] = append(grouped[c.Stage], c)
		counts.Counts[c.Stage]++
	}

	board := &Board{Total: counts.Total, Columns: make([]BoardColumn, 0, len(models.Stages))}
	for _, stage := range models.Stages {
		share, err := counts.Share(stage)
		if err != nil {
			return nil, err
		}
		column := grouped[stage]
		if column == nil {
			column = []models.Candidate{}
		}
		board.Columns = append(board.Columns, BoardColumn{
			Stage:      stage,
			Count:      counts.Counts[stage],
			Share:      share,
			Candidates: column,
		})
	}
	return board, nil
}
