package stage

import (
	"fmt"
	"strings"

	"github.com/hupe1980/llmcouncil/core"
	"github.com/hupe1980/llmcouncil/internal/util"
)

// Assemble renders a stage's prompt text from its declared parts and the
// currently available named inputs. Parts are emitted in declared order;
// the order is part of the stage contract, not an implementation detail.
//
// Literal parts are emitted under their label. They may carry Go template
// markers referencing the run's free-form variables; plain literals take the
// verbatim fast path. Variable parts look up their named input: a required
// input with no source fails with core.MissingInputError, an optional absent
// input omits the part entirely (it is not rendered as empty).
func Assemble(def *Definition, inputs map[string]string, vars map[string]any) (string, error) {
	sections := make([]string, 0, len(def.Parts))

	for _, part := range def.Parts {
		var body string
		switch {
		case part.Content != "":
			rendered, err := util.RenderTemplate(part.Content, vars)
			if err != nil {
				return "", fmt.Errorf("stage %s: render literal part %q: %w", def.ID, part.Label, err)
			}
			body = rendered
		default:
			v, ok := inputs[part.Source]
			if !ok || strings.TrimSpace(v) == "" {
				if part.Required {
					return "", &core.MissingInputError{Part: part.Source}
				}
				continue
			}
			body = v
		}

		sections = append(sections, renderSection(part, strings.TrimRight(body, "\n")))
	}

	return strings.Join(sections, "\n\n"), nil
}

func renderSection(part PromptPart, body string) string {
	if part.Label == "" {
		return body
	}
	switch part.Style {
	case StylePlain:
		return part.Label + ":\n" + body
	default:
		return "## " + part.Label + "\n\n" + body
	}
}
