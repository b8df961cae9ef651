// Interaction engine. Every step runs two ordered phases, friend
// interactions then spatial interactions, sharing one pairwise
// update rule. Each phase is snapshot-isolated: all pairwise events
// read opinion and integrity as they stood at the start of the phase,
// deltas are buffered, and buffered results are applied in id order at
// phase end. An agent selected by several partners in one phase
// therefore sees every event computed from the same pre-phase state.
package engine

import (
	"math"

	"github.com/talgya/agora/internal/agents"
)

// phaseBuffer holds the pre-phase snapshot plus the pending results of
// a phase's pairwise events.
type phaseBuffer struct {
	opinions []int
	phis     []float64

	dPhi       []float64
	newOpinion []int // pending opinion per agent, -1 when unchanged
}

func (s *Simulation) newPhaseBuffer() *phaseBuffer {
	n := len(s.population)
	buf := &phaseBuffer{
		opinions:   make([]int, n),
		phis:       make([]float64, n),
		dPhi:       make([]float64, n),
		newOpinion: make([]int, n),
	}
	for i, a := range s.population {
		buf.opinions[i] = a.Opinion
		buf.phis[i] = a.Integrity
		buf.newOpinion[i] = -1
	}
	return buf
}

// friendPhase runs friend interactions: each agent, in id order, draws
// a subset size from {1,2,3}, samples that many friends without
// replacement, and fires one pairwise event per sampled friend with
// the friend reduction factor applied.
func (s *Simulation) friendPhase() {
	buf := s.newPhaseBuffer()
	for _, a := range s.population {
		if len(a.Friends) == 0 {
			continue
		}
		k := 1 + s.src.Intn(3)
		pool := make([]int, len(a.Friends))
		for i, f := range a.Friends {
			pool[i] = int(f)
		}
		for _, j := range s.src.SampleInts(pool, k) {
			s.pairwise(buf, int(a.ID), j, s.cfg.FriendGamma)
		}
	}
	s.applyPhase(buf)
}

// spatialPhase runs proximity interactions. The phase is agent-centric:
// each agent i interacts with every agent inside its own integrity-
// derived radius, so a pair may fire once from each side.
func (s *Simulation) spatialPhase() {
	buf := s.newPhaseBuffer()
	for _, a := range s.population {
		r := interactionRadius(buf.phis[a.ID], s.cfg.MaxRadius)
		for _, j := range s.index.Query(int(a.ID), a.Position, r) {
			s.pairwise(buf, int(a.ID), j, 1.0)
		}
	}
	s.applyPhase(buf)
}

// interactionRadius is the integrity-derived Chebyshev reach:
// min(max, floor(max·phi)). With the default max of 3 this yields 0
// below 1/3, 1 in [1/3, 2/3), 2 in [2/3, 1), and 3 at exactly 1.
func interactionRadius(phi float64, maxRadius int) int {
	r := int(math.Floor(float64(maxRadius) * phi))
	if r > maxRadius {
		r = maxRadius
	}
	return r
}

// pairwise applies one interaction event between agents i and j. Both
// sides read the pre-phase snapshot; quality is a single Bernoulli
// draw shared by both updates. High-integrity agents contribute their
// state but are never mutated, and consume no opinion draw.
func (s *Simulation) pairwise(buf *phaseBuffer, i, j int, gamma float64) {
	q := s.src.Bernoulli(s.cfg.QualityProbability)
	same := buf.opinions[i] == buf.opinions[j]

	if s.population[i].Kind == agents.KindRegular {
		buf.dPhi[i] += integrityDelta(same, q, buf.phis[i], s.cfg.Alpha, gamma)
	}
	if s.population[j].Kind == agents.KindRegular {
		buf.dPhi[j] += integrityDelta(same, q, buf.phis[j], s.cfg.Alpha, gamma)
	}

	if s.population[i].Kind == agents.KindRegular {
		if s.src.Bernoulli(s.cfg.Beta * (1 - buf.phis[i]) * buf.phis[j] * gamma) {
			buf.newOpinion[i] = buf.opinions[j]
		}
	}
	if s.population[j].Kind == agents.KindRegular {
		if s.src.Bernoulli(s.cfg.Beta * (1 - buf.phis[j]) * buf.phis[i] * gamma) {
			buf.newOpinion[j] = buf.opinions[i]
		}
	}
}

// integrityDelta computes one side's integrity change. Agreement met
// with a good interaction, or disagreement met with a bad one,
// reinforces integrity toward 1; the mismatched combinations pull it
// toward 0.
func integrityDelta(same, quality bool, phi, alpha, gamma float64) float64 {
	var f float64
	if same == quality {
		f = 1 - phi
	} else {
		f = -phi
	}
	return alpha * f * gamma
}

// applyPhase commits the buffered deltas in id order, clamping
// integrity to [0,1]. With overlapping events on one agent the last
// event in processing order decides the pending opinion; integrity
// deltas accumulate additively.
func (s *Simulation) applyPhase(buf *phaseBuffer) {
	for i, a := range s.population {
		if a.Kind == agents.KindHighIntegrity {
			continue
		}
		a.Integrity = clamp01(buf.phis[i] + buf.dPhi[i])
		if buf.newOpinion[i] >= 0 {
			a.Opinion = buf.newOpinion[i]
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
