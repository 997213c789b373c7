package templates

import (
	"fmt"
	"strings"
	"sync"

	"github.com/osteele/liquid"

	"github.com/ignite/leadroom/internal/domain"
)

// PromptRenderer renders a template's prompt sections with prospect
// context using the Liquid template language. Parsed templates are
// cached by source text.
type PromptRenderer struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewPromptRenderer creates a renderer with the domain filters
// registered.
func NewPromptRenderer() *PromptRenderer {
	engine := liquid.NewEngine()

	// Default value filter: {{ first_name | default: "there" }}
	engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		strVal := fmt.Sprintf("%v", value)
		if strVal == "" || strVal == "<nil>" {
			return defaultVal
		}
		return value
	})

	// Capitalize first letter: {{ industry | capitalize }}
	engine.RegisterFilter("capitalize", func(s string) string {
		if len(s) == 0 {
			return s
		}
		return strings.ToUpper(string(s[0])) + strings.ToLower(s[1:])
	})

	return &PromptRenderer{engine: engine}
}

// Render renders every prompt section against the prospect context and
// joins them in the fixed section order, skipping empty sections. The
// result is the full prompt handed to the generator.
func (pr *PromptRenderer) Render(t domain.Template, prospectCtx map[string]interface{}) (string, error) {
	var parts []string
	for _, key := range domain.PromptSectionKeys {
		src, ok := t.PromptSections[key]
		if !ok || src == "" {
			continue
		}
		rendered, err := pr.renderOne(src, prospectCtx)
		if err != nil {
			return "", fmt.Errorf("%w: section %s: %v", domain.ErrValidation, key, err)
		}
		parts = append(parts, rendered)
	}
	return strings.Join(parts, "\n\n"), nil
}

func (pr *PromptRenderer) renderOne(src string, bindings map[string]interface{}) (string, error) {
	var tmpl *liquid.Template
	if cached, ok := pr.cache.Load(src); ok {
		tmpl = cached.(*liquid.Template)
	} else {
		parsed, err := pr.engine.ParseString(src)
		if err != nil {
			return "", err
		}
		pr.cache.Store(src, parsed)
		tmpl = parsed
	}
	out, err := tmpl.RenderString(bindings)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ProspectContext flattens a prospect into Liquid bindings: identity
// fields plus every trait under its own name.
func ProspectContext(p *domain.Prospect) map[string]interface{} {
	ctx := map[string]interface{}{
		"prospect_id":    p.ID,
		"email":          p.Email,
		"current_room":   string(p.CurrentRoom),
		"email_sequence": p.EmailSequencePosition,
	}
	for name, val := range p.Attributes.Traits {
		ctx[name] = val
	}
	for name, val := range p.Attributes.Counts {
		ctx[name] = val
	}
	return ctx
}
