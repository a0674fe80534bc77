package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/llmcouncil/core"
)

func testDef(parts ...PromptPart) *Definition {
	return &Definition{
		ID:             "test",
		Version:        "1.0",
		Role:           RoleDelegate,
		Kind:           KindFanout,
		InputsRequired: []string{InputQuery},
		InputsOptional: []string{InputContext},
		Contract:       ResponseContract{Type: ContractText},
		Failure: FailurePolicy{
			OnRefusal:    PolicyRecordError,
			OnParseError: PolicyFallbackText,
		},
		Parts: parts,
	}
}

func TestAssemble_PartsInDeclaredOrder(t *testing.T) {
	def := testDef(
		PromptPart{Content: "Answer carefully."},
		PromptPart{Source: InputQuery, Label: "Question", Required: true, Style: StyleMarkdown},
		PromptPart{Source: InputContext, Label: "Context", Style: StylePlain},
	)

	prompt, err := Assemble(def, map[string]string{
		InputQuery:   "What is a monad?",
		InputContext: "audience: beginners",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Answer carefully.\n\n## Question\n\nWhat is a monad?\n\nContext:\naudience: beginners", prompt)
}

func TestAssemble_MissingRequiredInput(t *testing.T) {
	def := testDef(
		PromptPart{Source: InputQuery, Label: "Question", Required: true},
	)

	_, err := Assemble(def, map[string]string{}, nil)

	var merr *core.MissingInputError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, InputQuery, merr.Part)
}

func TestAssemble_OptionalAbsentIsOmitted(t *testing.T) {
	def := testDef(
		PromptPart{Source: InputQuery, Label: "Question", Required: true},
		PromptPart{Source: InputContext, Label: "Context"},
	)

	prompt, err := Assemble(def, map[string]string{InputQuery: "q"}, nil)
	require.NoError(t, err)

	// No empty "Context" heading in the output.
	assert.NotContains(t, prompt, "Context")
}

func TestAssemble_BlankOptionalTreatedAsAbsent(t *testing.T) {
	def := testDef(
		PromptPart{Source: InputQuery, Label: "Question", Required: true},
		PromptPart{Source: InputContext, Label: "Context"},
	)

	prompt, err := Assemble(def, map[string]string{InputQuery: "q", InputContext: "   "}, nil)
	require.NoError(t, err)
	assert.NotContains(t, prompt, "Context")
}

func TestAssemble_LiteralTemplateVariables(t *testing.T) {
	def := testDef(
		PromptPart{Content: "Respond as {{.tone}}."},
		PromptPart{Source: InputQuery, Required: true},
	)

	prompt, err := Assemble(def, map[string]string{InputQuery: "q"}, map[string]any{"tone": "a skeptic"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Respond as a skeptic.")
}
