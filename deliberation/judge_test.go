package deliberation

import (
	"testing"

	"github.com/hupe1980/copilotmesh/core"
	"github.com/stretchr/testify/assert"
)

func TestMarkerJudge(t *testing.T) {
	j := NewMarkerJudge()

	latest := map[string]string{
		"Jane":   "I AGREE with Sam",
		"Sam":    "We have Consensus",
		"Alex":   "No way",
		"Mia":    "+1, ship it",
		"Victor": "I concur, and I agree",
	}

	assert.Equal(t, 4, j.Agreements("Alex", "anything", latest))
	assert.Equal(t, 3, j.Agreements("Jane", "anything", latest), "own reply is ignored")
	assert.Equal(t, 0, j.Agreements("Jane", "x", nil))
}

func TestMarkerJudge_Dissent(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  int
	}{
		{"disagree", "I strongly disagree with everything said.", 0},
		{"no consensus", "There is no consensus here at all.", 0},
		{"do not agree", "I do not agree.", 0},
		{"don't fully agree", "I don't fully agree with Sam.", 0},
		{"curly apostrophe", "I can’t agree yet.", 0},
		{"agreement word", "We need an agreement first.", 0},
		{"plain agree", "Agreed, let's go.", 1},
		{"negation far away", "No doubt about it, I agree.", 1},
		{"mixed", "I don't agree on cost but I concur on scope.", 1},
		{"plus one", "+1 from me", 1},
	}

	j := NewMarkerJudge()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, j.Agreements("Jane", "my proposal", map[string]string{"Victor": tt.reply}))
		})
	}

	assert.Equal(t, 0, j.Agreements("Jane", "my proposal", map[string]string{
		"Victor": "I strongly disagree with everything said.",
		"Mia":    "There is no consensus here at all.",
	}))
}

func TestMarkerJudge_MultiWordMarker(t *testing.T) {
	j := MarkerJudge{Markers: []string{"sounds good"}, Negations: []string{"not"}}
	assert.Equal(t, 1, j.Agreements("Jane", "", map[string]string{"Sam": "That sounds good to me"}))
	assert.Equal(t, 0, j.Agreements("Jane", "", map[string]string{"Sam": "That does not sound good"}))
	assert.Equal(t, 0, j.Agreements("Jane", "", map[string]string{"Sam": "That's not sounds good"}))
}

func TestJudgeFunc(t *testing.T) {
	var seen map[string]string
	j := JudgeFunc(func(copilotID, reply string, latest map[string]string) int {
		seen = latest
		return len(latest)
	})

	latest := map[string]string{"Sam": "a", "Mia": "b"}
	assert.Equal(t, 2, j.Agreements("Jane", "x", latest))
	assert.Equal(t, latest, seen)
}

func TestFixedJudge(t *testing.T) {
	assert.Equal(t, 3, FixedJudge(3).Agreements("Jane", "", nil))
}

func TestRoundRobin(t *testing.T) {
	roster := core.Roster{"Jane", "Sam", "Alex"}
	var got []string
	for i := 0; i < 5; i++ {
		got = append(got, RoundRobin{}.Next(roster, i))
	}
	assert.Equal(t, []string{"Jane", "Sam", "Alex", "Jane", "Sam"}, got)
}

func TestRandom_SameSeedSameSequence(t *testing.T) {
	a, b := NewRandom(7), NewRandom(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Next(core.DefaultRoster, i), b.Next(core.DefaultRoster, i))
	}
}
