package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/leadroom/internal/domain"
)

func TestRenderJoinsSectionsInOrder(t *testing.T) {
	renderer := NewPromptRenderer()
	tpl := domain.Template{
		PromptSections: map[string]string{
			domain.SectionTone:      "Friendly and direct.",
			domain.SectionPersona:   "You write as a sales engineer.",
			domain.SectionObjective: "Get a reply from {{ email }}.",
		},
	}

	out, err := renderer.Render(tpl, map[string]interface{}{"email": "lead@example.com"})
	require.NoError(t, err)

	assert.Equal(t,
		"You write as a sales engineer.\n\nFriendly and direct.\n\nGet a reply from lead@example.com.",
		out)
}

func TestRenderDefaultFilter(t *testing.T) {
	renderer := NewPromptRenderer()
	tpl := domain.Template{
		PromptSections: map[string]string{
			domain.SectionObjective: `Greet {{ first_name | default: "there" }}.`,
		},
	}

	out, err := renderer.Render(tpl, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "Greet there.", out)

	out, err = renderer.Render(tpl, map[string]interface{}{"first_name": "Dana"})
	require.NoError(t, err)
	assert.Equal(t, "Greet Dana.", out)
}

func TestRenderBadTemplate(t *testing.T) {
	renderer := NewPromptRenderer()
	tpl := domain.Template{
		PromptSections: map[string]string{
			domain.SectionObjective: "{% if %}",
		},
	}

	_, err := renderer.Render(tpl, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestProspectContextFlattensTraits(t *testing.T) {
	p := &domain.Prospect{
		ID:                    "p-1",
		Email:                 "lead@example.com",
		CurrentRoom:           domain.RoomSolution,
		EmailSequencePosition: 3,
		Attributes: domain.ProspectAttributes{
			Traits: map[string]string{"industry": "Software"},
			Counts: map[string]int{"page_visits": 4},
		},
	}

	ctx := ProspectContext(p)
	assert.Equal(t, "lead@example.com", ctx["email"])
	assert.Equal(t, "solution", ctx["current_room"])
	assert.Equal(t, 3, ctx["email_sequence"])
	assert.Equal(t, "Software", ctx["industry"])
	assert.Equal(t, 4, ctx["page_visits"])
}
