package engine

import (
	"fmt"
	"math/rand"

	"github.com/hupe1980/llmcouncil/core"
)

// maxMembers is bounded by the alphabetic label space.
const maxMembers = 26

// AssignLabels returns the run's member set with anonymized labels assigned.
// It is a pure function from (member set, optional seed) to a labeled
// permutation: with a seed the assignment order is the deterministic
// permutation of that seed over the member set, otherwise the supplied order
// is kept. Either way the labels form a bijection onto the first N letters
// of the alphabet and stay constant for the remainder of the run.
func AssignLabels(members []core.Member, seed *int64) ([]core.Member, error) {
	n := len(members)
	if n == 0 {
		return nil, fmt.Errorf("council has no members")
	}
	if n > maxMembers {
		return nil, fmt.Errorf("council has %d members; at most %d supported", n, maxMembers)
	}

	out := make([]core.Member, n)
	copy(out, members)

	if seed != nil {
		rng := rand.New(rand.NewSource(*seed))
		rng.Shuffle(n, func(i, j int) { out[i], out[j] = out[j], out[i] })
	}

	labels := core.Labels(n)
	for i := range out {
		out[i].Label = labels[i]
	}

	return out, nil
}

// pool holds the labeled member set for one run, in label order.
type pool struct {
	members []core.Member
}

func newPool(members []core.Member, seed *int64) (*pool, error) {
	labeled, err := AssignLabels(members, seed)
	if err != nil {
		return nil, err
	}
	return &pool{members: labeled}, nil
}

func (p *pool) labels() []core.Label {
	out := make([]core.Label, len(p.members))
	for i, m := range p.members {
		out[i] = m.Label
	}
	return out
}

// labelToMember reveals the anonymization for the audit trail. The mapping
// never reaches peer-facing prompts.
func (p *pool) labelToMember() map[core.Label]string {
	out := make(map[core.Label]string, len(p.members))
	for _, m := range p.members {
		name := m.Name
		if name == "" {
			name = m.ModelID
		}
		out[m.Label] = name
	}
	return out
}
