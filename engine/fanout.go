package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/llmcouncil/core"
	"github.com/hupe1980/llmcouncil/stage"
)

// fanout runs the executor concurrently for every participant of a fanout
// stage and barrier-synchronizes: it returns only once each invocation has
// reached a terminal outcome. Individual failures are absorbed into the
// participant's terminal status, never propagated as errors.
//
// Results are placed in label order (the participants slice is in label
// order), independent of the order in which underlying invocations actually
// complete, so downstream rendering is deterministic regardless of network
// timing.
func (x *executor) fanout(ctx context.Context, def *stage.Definition, inputs map[string]string, vars map[string]any, participants []participant, known []core.Label) []core.MemberResponse {
	results := make([]core.MemberResponse, len(participants))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range participants {
		g.Go(func() error {
			results[i] = x.execute(gctx, def, inputs, vars, p, known)
			return nil
		})
	}
	// No task returns an error; Wait is purely the barrier.
	_ = g.Wait()

	return results
}

// allFailed reports the stage-level fatal condition: every participant ended
// in a non-usable terminal state.
func allFailed(responses []core.MemberResponse) bool {
	for _, r := range responses {
		if r.OK() {
			return false
		}
	}
	return true
}
