package intel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSectionName(t *testing.T) {
	t.Run("accepts every known section", func(t *testing.T) {
		for _, name := range AllSectionNames() {
			got, err := ParseSectionName(string(name))
			require.NoError(t, err)
			assert.Equal(t, name, got)
		}
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		for _, raw := range []string{"", "Identity", "ai_context", "metadata", "nametags"} {
			_, err := ParseSectionName(raw)
			assert.ErrorIs(t, err, ErrInvalidSection, "input %q", raw)
		}
	})
}

func TestSectionNameKinds(t *testing.T) {
	assert.Len(t, AllSectionNames(), 12)
	assert.Len(t, BaseSectionNames(), 9)
	assert.Len(t, SupplementalSectionNames(), 3)

	for _, name := range AllSectionNames() {
		assert.NotEqual(t, name.IsBase(), name.IsSupplemental(), "section %s", name)
	}
	for _, name := range BaseSectionNames() {
		assert.True(t, name.IsBase(), "section %s", name)
	}
	for _, name := range SupplementalSectionNames() {
		assert.True(t, name.IsSupplemental(), "section %s", name)
	}
}

func TestProfileSection(t *testing.T) {
	p := profileFixture()

	t.Run("returns typed content per section", func(t *testing.T) {
		got, err := p.Section(SectionIdentity)
		require.NoError(t, err)
		assert.Equal(t, p.Identity, got)

		got, err = p.Section(SectionNotes)
		require.NoError(t, err)
		assert.Equal(t, p.Notes, got)

		for _, name := range AllSectionNames() {
			content, err := p.Section(name)
			require.NoError(t, err)
			assert.NotNil(t, content, "section %s", name)
		}
	})

	t.Run("unknown name errors", func(t *testing.T) {
		_, err := p.Section(SectionName("funding"))
		assert.True(t, errors.Is(err, ErrInvalidSection))
	})
}

func TestProfileMarkDegraded(t *testing.T) {
	p := profileFixture()
	require.False(t, p.Degraded)

	p.MarkDegraded(SectionDisclosures)
	p.MarkDegraded(SectionNotes)

	assert.True(t, p.Degraded)
	assert.Equal(t, []SectionName{SectionDisclosures, SectionNotes}, p.DegradedSections)
}

func TestProfileApplySnapshot(t *testing.T) {
	p := &Profile{}
	snapshot := &DossierSnapshot{
		Identity:   IdentitySection{Name: "Juniper Staffing"},
		Tasks:      TasksSection{TotalTasks: 3, CompletedTasks: 1, OpenTasks: 2},
		Engagement: EngagementSection{CheckInsCompleted: 1, DaysSinceActivity: 2},
	}

	p.ApplySnapshot(snapshot)

	assert.Equal(t, "Juniper Staffing", p.Identity.Name)
	assert.Equal(t, 3, p.Tasks.TotalTasks)
	assert.Equal(t, 1, p.Engagement.CheckInsCompleted)
}
