package lifecycle

import (
	"math"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

// overallProgress is the rounded mean of the projects' completion
// percentages. An empty roadmap rolls up to zero.
func overallProgress(projects []types.Project) int {
	if len(projects) == 0 {
		return 0
	}
	sum := 0
	for _, p := range projects {
		sum += p.Completion
	}
	return int(math.Round(float64(sum) / float64(len(projects))))
}
