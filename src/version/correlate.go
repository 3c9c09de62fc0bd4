package version

import (
	"context"

	"terasology-launcher/src/logger"
	"terasology-launcher/src/repository"
)

// CorrelationBoundFactor limits the companion builds visited to this many per
// engine build that needs a match.
const CorrelationBoundFactor = 2

// Correlate maps engine builds of line to the Omega companion builds that
// bundle them.
//
// Companion builds are visited from the newest successful one downwards. A
// successful build without an engine trigger is parked: it is usually a
// manual rebuild and replaces the companion of the next triggered build
// found below it. The walk ends once a trigger at or below the oldest engine
// build is mapped, or after CorrelationBoundFactor*len(engineBuilds) visits.
//
// An error is returned only when the companion's last successful build is
// unknown, or ctx is done.
func Correlate(ctx context.Context, repo repository.BuildRepository, line repository.JobLine, engineBuilds []int, log logger.Logger) (map[int]int, error) {
	mapping := make(map[int]int)
	if len(engineBuilds) == 0 {
		return mapping, nil
	}

	oldest := engineBuilds[0]
	for _, n := range engineBuilds {
		if n < oldest {
			oldest = n
		}
	}

	companion, err := repo.LastSuccessfulBuildNumber(ctx, line.CompanionJob)
	if err != nil {
		return nil, err
	}

	bound := CorrelationBoundFactor * len(engineBuilds)
	parked := 0
	for visited := 0; ; visited++ {
		if companion < 1 {
			log.Warn("Correlation of %s stopped: no %s builds left", line, line.CompanionJob)
			break
		}
		if visited >= bound {
			log.Warn("Correlation of %s gave up after %d %s builds", line, visited, line.CompanionJob)
			break
		}
		if err := ctx.Err(); err != nil {
			return mapping, err
		}

		n := companion
		companion--

		result, err := repo.JobResult(ctx, line.CompanionJob, n)
		if err != nil {
			log.Debug("Ignoring %s #%d: %v", line.CompanionJob, n, err)
			continue
		}
		if result != repository.ResultSuccess {
			continue
		}

		trigger, err := repo.EngineTriggerBuildNumber(ctx, line, n)
		if err != nil {
			log.Debug("Ignoring %s #%d: %v", line.CompanionJob, n, err)
			continue
		}
		if trigger == repository.NoTrigger {
			parked = n
			continue
		}

		match := n
		if parked != 0 {
			match = parked
			parked = 0
		}
		// The newest companion claiming an engine build wins.
		if _, seen := mapping[trigger]; !seen {
			mapping[trigger] = match
		}

		if trigger <= oldest {
			break
		}
	}
	return mapping, nil
}
