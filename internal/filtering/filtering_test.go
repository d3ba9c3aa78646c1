package filtering

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"alfredoptarigan/resume-screener/internal/models"
)

func resume(name, email string, skills ...string) models.Resume {
	r := models.Resume{
		ID:           uuid.New(),
		PersonalInfo: &models.PersonalInfo{Name: name, Email: email},
		Skills:       datatypes.JSONSlice[string](skills),
	}
	r.Normalize()
	return r
}

func ids(resumes []models.Resume) []uuid.UUID {
	out := make([]uuid.UUID, len(resumes))
	for i, r := range resumes {
		out[i] = r.ID
	}
	return out
}

func sampleCollection() []models.Resume {
	anna := resume("Anna Lee", "anna@example.com", "go", "sql")
	anna.PersonalInfo.Location = "Berlin"
	anna.Education = datatypes.JSONSlice[models.Education]{{Degree: "BSc Computer Science", Institution: "TU", Year: "2019"}}
	anna.Experience = datatypes.JSONSlice[models.Experience]{{Title: "Backend Engineer", Company: "Acme", Duration: "3y"}}
	anna.Certifications = datatypes.JSONSlice[string]{"AWS SAA"}

	bob := resume("Bob Smith", "bob@example.com", "python")
	bob.PersonalInfo.Location = "Paris"
	bob.Education = datatypes.JSONSlice[models.Education]{{Degree: "MSc Data Science"}}
	bob.Experience = datatypes.JSONSlice[models.Experience]{
		{Title: "Data Engineer", Company: "Globex"},
		{Title: "Backend Engineer", Company: "Initech"},
	}

	carol := resume("Carol King", "carol@corp.io", "go", "kubernetes")
	carol.PersonalInfo.Location = "Berlin"
	carol.Certifications = datatypes.JSONSlice[string]{"CKA", "AWS SAA"}

	return []models.Resume{anna, bob, carol}
}

func TestParseCategoryRoundTrip(t *testing.T) {
	for _, c := range Categories {
		parsed, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	_, err := ParseCategory("location_Berlin")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestNewStateKeepsValueVerbatim(t *testing.T) {
	state, err := NewState("", "skill", "c_plus_plus")
	require.NoError(t, err)
	require.NotNil(t, state.Criterion)
	assert.Equal(t, Skill, state.Criterion.Category)
	assert.Equal(t, "c_plus_plus", state.Criterion.Value)

	state, err = NewState("ann", "", "ignored")
	require.NoError(t, err)
	assert.Nil(t, state.Criterion)

	_, err = NewState("", "salary", "1")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestBuildVocabulary(t *testing.T) {
	vocab := BuildVocabulary(sampleCollection())

	assert.Equal(t, []string{"Berlin", "Paris"}, vocab[Location])
	assert.Equal(t, []string{"BSc Computer Science", "MSc Data Science"}, vocab[Education])
	assert.Equal(t, []string{"go", "kubernetes", "python", "sql"}, vocab[Skill])
	assert.Equal(t, []string{"Backend Engineer", "Data Engineer"}, vocab[JobTitle])
	assert.Equal(t, []string{"Acme", "Globex", "Initech"}, vocab[Company])
	assert.Equal(t, []string{"AWS SAA", "CKA"}, vocab[Certification])
}

func TestBuildVocabularyIgnoresInsertionOrderAndEmptyValues(t *testing.T) {
	c := sampleCollection()
	empty := resume("", "")
	empty.Experience = datatypes.JSONSlice[models.Experience]{{Title: "", Company: ""}}
	c = append(c, empty)

	reversed := []models.Resume{c[3], c[2], c[1], c[0]}
	assert.Equal(t, BuildVocabulary(c), BuildVocabulary(reversed))

	for _, values := range BuildVocabulary(c) {
		assert.NotContains(t, values, "")
	}
}

func TestVocabularyListsDuplicateSkillOnce(t *testing.T) {
	r := resume("Dup", "dup@example.com", "go", "Go", "go")
	vocab := BuildVocabulary([]models.Resume{r})
	assert.Equal(t, []string{"go"}, vocab[Skill])
}

func TestVocabularyCriteriaAndJSON(t *testing.T) {
	vocab := BuildVocabulary(sampleCollection())
	criteria := vocab.Criteria()
	require.NotEmpty(t, criteria)
	assert.Equal(t, Criterion{Category: Location, Value: "Berlin"}, criteria[0])
	assert.Equal(t, Criterion{Category: Certification, Value: "CKA"}, criteria[len(criteria)-1])

	raw, err := json.Marshal(vocab)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"jobTitle":["Backend Engineer","Data Engineer"]`)
}

func TestMatchesQuery(t *testing.T) {
	anna := resume("Anna Lee", "al@example.com", "go")
	bob := resume("Bob Smith", "bob@example.com", "python")

	assert.True(t, Matches(&anna, State{Query: "ann"}))
	assert.False(t, Matches(&bob, State{Query: "ann"}))
	assert.True(t, Matches(&bob, State{Query: "PYTHON"}))
	assert.True(t, Matches(&bob, State{Query: "EXAMPLE.com"}))
	assert.True(t, Matches(&bob, State{}))
}

func TestMatchesCriterionIsCaseSensitive(t *testing.T) {
	normalized := resume("N", "n@example.com", "Python")
	raw := models.Resume{
		PersonalInfo: &models.PersonalInfo{Name: "R"},
		Skills:       datatypes.JSONSlice[string]{"Python"},
	}

	criterion := &Criterion{Category: Skill, Value: "python"}
	assert.True(t, Matches(&normalized, State{Criterion: criterion}))
	assert.False(t, Matches(&raw, State{Criterion: criterion}))
	assert.True(t, Matches(&raw, State{Query: "PYTHON"}))

	berlin := resume("B", "b@example.com")
	berlin.PersonalInfo.Location = "Berlin"
	assert.False(t, Matches(&berlin, State{Criterion: &Criterion{Category: Location, Value: "berlin"}}))
}

func TestMatchesEachCategory(t *testing.T) {
	c := sampleCollection()
	anna, bob, carol := c[0], c[1], c[2]

	cases := []struct {
		name      string
		criterion Criterion
		want      []models.Resume
	}{
		{"location", Criterion{Location, "Berlin"}, []models.Resume{anna, carol}},
		{"education", Criterion{Education, "MSc Data Science"}, []models.Resume{bob}},
		{"skill", Criterion{Skill, "go"}, []models.Resume{anna, carol}},
		{"job title in any entry", Criterion{JobTitle, "Backend Engineer"}, []models.Resume{anna, bob}},
		{"company", Criterion{Company, "Initech"}, []models.Resume{bob}},
		{"certification", Criterion{Certification, "AWS SAA"}, []models.Resume{anna, carol}},
		{"no match", Criterion{Company, "Nope"}, []models.Resume{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			criterion := tc.criterion
			got := Visible(c, State{Criterion: &criterion}, false)
			assert.Equal(t, ids(tc.want), ids(got))
		})
	}
}

func TestMissingPersonalInfoIsExcluded(t *testing.T) {
	r := models.Resume{ID: uuid.New(), Skills: datatypes.JSONSlice[string]{"go"}}
	assert.False(t, Matches(&r, State{}))
	assert.False(t, Matches(nil, State{}))
	assert.Empty(t, Visible([]models.Resume{r}, State{}, false))
}

func TestVisibleIsSoundSubset(t *testing.T) {
	c := sampleCollection()
	states := []State{
		{},
		{Query: "o"},
		{Query: "go", Criterion: &Criterion{Location, "Berlin"}},
		{Query: "zzz"},
		{Criterion: &Criterion{JobTitle, "Backend Engineer"}},
	}

	for _, state := range states {
		got := Visible(c, state, false)
		visible := make(map[uuid.UUID]bool)
		for _, r := range got {
			visible[r.ID] = true
			assert.True(t, Matches(&r, state))
		}
		for i := range c {
			if !visible[c[i].ID] {
				assert.False(t, Matches(&c[i], state))
			}
		}
		assert.Equal(t, ids(got), ids(Visible(c, state, false)), "idempotent")
	}
}

func TestVisibleCombinesQueryAndCriterion(t *testing.T) {
	c := sampleCollection()
	got := Visible(c, State{Query: "carol", Criterion: &Criterion{Skill, "go"}}, false)
	assert.Equal(t, []uuid.UUID{c[2].ID}, ids(got))
}

func TestScenarioSkillFilter(t *testing.T) {
	r1 := resume("R1", "r1@example.com", "go", "sql")
	r2 := resume("R2", "r2@example.com", "python")

	got := Visible([]models.Resume{r1, r2}, State{Criterion: &Criterion{Skill, "go"}}, false)
	assert.Equal(t, []uuid.UUID{r1.ID}, ids(got))
}

func TestScenarioFreeTextName(t *testing.T) {
	anna := resume("Anna Lee", "al@example.com", "go")
	bob := resume("Bob Smith", "bs@example.com", "python")

	got := Visible([]models.Resume{anna, bob}, State{Query: "ann"}, false)
	assert.Equal(t, []uuid.UUID{anna.ID}, ids(got))
}

func TestRankIsStableDescending(t *testing.T) {
	r1 := resume("R1", "")
	r2 := resume("R2", "")
	r3 := resume("R3", "")
	r1.SetMatch(90, "a")
	r2.SetMatch(90, "b")
	r3.SetMatch(40, "c")

	got := Visible([]models.Resume{r3, r1, r2}, State{}, true)
	assert.Equal(t, []uuid.UUID{r1.ID, r2.ID, r3.ID}, ids(got))

	got = Visible([]models.Resume{r1, r2, r3}, State{}, true)
	assert.Equal(t, []uuid.UUID{r1.ID, r2.ID, r3.ID}, ids(got))
}

func TestRankTreatsUnscoredAsZero(t *testing.T) {
	unscored := resume("U", "")
	low := resume("L", "")
	low.SetMatch(0, "none")
	high := resume("H", "")
	high.SetMatch(10, "some")

	got := Visible([]models.Resume{unscored, low, high}, State{}, true)
	assert.Equal(t, []uuid.UUID{high.ID, unscored.ID, low.ID}, ids(got))
}

func TestUnrankedKeepsInsertionOrder(t *testing.T) {
	low := resume("L", "")
	low.SetMatch(5, "x")
	high := resume("H", "")
	high.SetMatch(95, "y")

	got := Visible([]models.Resume{low, high}, State{}, false)
	assert.Equal(t, []uuid.UUID{low.ID, high.ID}, ids(got))
}

func TestVisibleDoesNotReorderInput(t *testing.T) {
	low := resume("L", "")
	low.SetMatch(5, "x")
	high := resume("H", "")
	high.SetMatch(95, "y")
	input := []models.Resume{low, high}

	Visible(input, State{}, true)
	assert.Equal(t, []uuid.UUID{low.ID, high.ID}, ids(input))
}
