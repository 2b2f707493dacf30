package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_MarshalJSON(t *testing.T) {
	testCases := []struct {
		id   ID
		want string
	}{
		{id: "7", want: `7`},
		{id: "-3", want: `-3`},
		{id: "0", want: `0`},
		{id: "007", want: `"007"`},
		{id: "+7", want: `"+7"`},
		{id: "-0", want: `"-0"`},
		{id: "99999999999999999999", want: `"99999999999999999999"`},
		{id: "6f1c2c1e-9a43-4d1f-8f7e-2b0c1d2e3f40", want: `"6f1c2c1e-9a43-4d1f-8f7e-2b0c1d2e3f40"`},
		{id: "", want: `""`},
	}

	for _, tc := range testCases {
		t.Run(string(tc.id), func(t *testing.T) {
			b, err := json.Marshal(tc.id)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(b))
			assert.True(t, json.Valid(b))
		})
	}
}

func TestSubmission_MarshalsNonCanonicalParticipantID(t *testing.T) {
	b, err := json.Marshal(Submission{ParticipantID: "007", QuestID: "quest1", TaskID: 1})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"participant_id":"007"`)
}

func TestID_UnmarshalJSON(t *testing.T) {
	var p Participant
	require.NoError(t, json.Unmarshal([]byte(`{"id": 12, "name": "Ada"}`), &p))
	assert.Equal(t, ID("12"), p.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "abc"}`), &p))
	assert.Equal(t, ID("abc"), p.ID)
}
