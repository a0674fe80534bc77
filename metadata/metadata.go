package metadata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/hupe1980/llmcouncil/core"
	"github.com/hupe1980/llmcouncil/engine"
	"github.com/hupe1980/llmcouncil/logging"
	"github.com/hupe1980/llmcouncil/stage"
)

// Subfolder per record kind under the store root.
const (
	dirCouncils = "councils"
	dirPersonas = "personas"
	dirMembers  = "members"
	dirChairmen = "chairmen"
	dirStages   = "stages"
	dirPrompts  = "prompts"
)

// Persona is a reusable system prompt.
type Persona struct {
	ID     string
	Name   string
	Prompt string
}

// Member binds a model to a persona.
type Member struct {
	ID      string
	Name    string
	ModelID string
	Persona string
	Prompt  string
}

// Chairman is the member record used for the chair role.
type Chairman = Member

// CouncilRecord names the chair, members and stages of a council by id.
type CouncilRecord struct {
	ID       string
	Name     string
	Chairman string
	Members  []string
	Stages   []string
	Prompt   string
}

// PromptRecord is a stored query document.
type PromptRecord struct {
	ID     string
	Name   string
	Prompt string
}

// Options holds store configuration.
type Options struct {
	Logger logging.Logger
}

// Store loads council metadata records from markdown files with TOML front
// matter, laid out in kind subfolders under a root directory.
type Store struct {
	root   string
	logger logging.Logger
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, optFns ...func(o *Options)) *Store {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{root: dir, logger: opts.Logger}
}

// Fetch implements core.PersonaLoader.
func (s *Store) Fetch(ctx context.Context, id string) (string, error) {
	p, err := s.Persona(ctx, id)
	if err != nil {
		return "", err
	}
	return p.Prompt, nil
}

var _ core.PersonaLoader = (*Store)(nil)

// Persona loads a persona record by id.
func (s *Store) Persona(_ context.Context, id string) (Persona, error) {
	fm, body, err := s.load(dirPersonas, id, []string{"id", "name"})
	if err != nil {
		return Persona{}, err
	}
	return Persona{ID: id, Name: str(fm, "name"), Prompt: body}, nil
}

// Member loads a member record by id.
func (s *Store) Member(_ context.Context, id string) (Member, error) {
	fm, body, err := s.load(dirMembers, id, []string{"id", "name", "model_id", "persona"})
	if err != nil {
		return Member{}, err
	}
	return s.member(fm, body, id)
}

// Chairman loads a chair record by id.
func (s *Store) Chairman(_ context.Context, id string) (Chairman, error) {
	fm, body, err := s.load(dirChairmen, id, []string{"id", "name", "model_id", "persona"})
	if err != nil {
		return Chairman{}, err
	}
	return s.member(fm, body, id)
}

func (s *Store) member(fm map[string]any, body, id string) (Member, error) {
	m := Member{
		ID:      id,
		Name:    str(fm, "name"),
		ModelID: str(fm, "model_id"),
		Persona: str(fm, "persona"),
		Prompt:  body,
	}
	if m.ModelID == "" {
		return Member{}, fmt.Errorf("member %q has no model_id", id)
	}
	return m, nil
}

// Council loads a council record by id.
func (s *Store) Council(_ context.Context, id string) (CouncilRecord, error) {
	fm, body, err := s.load(dirCouncils, id, []string{"id", "name", "chairman", "members", "stages"})
	if err != nil {
		return CouncilRecord{}, err
	}
	rec := CouncilRecord{
		ID:       id,
		Name:     str(fm, "name"),
		Chairman: str(fm, "chairman"),
		Members:  strList(fm, "members"),
		Stages:   strList(fm, "stages"),
		Prompt:   body,
	}
	if rec.Chairman == "" {
		return CouncilRecord{}, fmt.Errorf("council %q has no chairman", id)
	}
	if len(rec.Members) == 0 {
		return CouncilRecord{}, fmt.Errorf("council %q has no members", id)
	}
	return rec, nil
}

// Prompt loads a stored query document by id.
func (s *Store) Prompt(_ context.Context, id string) (PromptRecord, error) {
	fm, body, err := s.load(dirPrompts, id, []string{"id", "name"})
	if err != nil {
		return PromptRecord{}, err
	}
	return PromptRecord{ID: id, Name: str(fm, "name"), Prompt: body}, nil
}

// Assemble resolves a council record into a runnable engine.Council,
// loading every member and the chair.
func (s *Store) Assemble(ctx context.Context, councilID string) (engine.Council, error) {
	rec, err := s.Council(ctx, councilID)
	if err != nil {
		return engine.Council{}, err
	}

	chair, err := s.Chairman(ctx, rec.Chairman)
	if err != nil {
		return engine.Council{}, err
	}

	c := engine.Council{
		ID: rec.ID,
		Chair: core.Member{
			Name:       chair.Name,
			ModelID:    chair.ModelID,
			PersonaRef: chair.Persona,
		},
	}
	for _, memberID := range rec.Members {
		m, err := s.Member(ctx, memberID)
		if err != nil {
			return engine.Council{}, err
		}
		c.Members = append(c.Members, core.Member{
			Name:       m.Name,
			ModelID:    m.ModelID,
			PersonaRef: m.Persona,
		})
	}
	return c, nil
}

var stageKeys = []string{
	"id", "name", "role", "kind", "purpose", "version",
	"inputs_required", "inputs_optional", "response_format", "failure_policy", "prompt",
}

// Stage loads a stage definition by id. The front matter mirrors the
// built-in definitions: role number, kind, inputs, response format, failure
// policy and a prompt table of parts.
func (s *Store) Stage(_ context.Context, id string) (*stage.Definition, error) {
	fm, _, err := s.load(dirStages, id, stageKeys)
	if err != nil {
		return nil, err
	}

	role, ok := stage.RoleFromNumber(intOr(fm, "role", 0))
	if !ok {
		return nil, fmt.Errorf("stage %q has no valid role number", id)
	}
	def := &stage.Definition{
		ID:      id,
		Version: strOr(fm, "version", "1.0"),
		Role:    role,
		Kind:    stage.KindSingle,
		Contract: stage.ResponseContract{
			Type: stage.ContractText,
		},
		Failure: stage.FailurePolicy{
			OnRefusal:    stage.PolicyRecordError,
			OnParseError: stage.PolicyFallbackText,
		},
		InputsRequired: strList(fm, "inputs_required"),
		InputsOptional: strList(fm, "inputs_optional"),
	}
	switch kind := str(fm, "kind"); kind {
	case "", "single":
	case "fanout", "fanout_members":
		def.Kind = stage.KindFanout
	default:
		return nil, fmt.Errorf("stage %q has unknown kind %q", id, kind)
	}

	if rf, ok := fm["response_format"].(map[string]any); ok {
		if str(rf, "type") == "json" {
			def.Contract.Type = stage.ContractJSON
		}
		def.Contract.RequiredKeys = strList(rf, "must_include_keys")
	}
	if fp, ok := fm["failure_policy"].(map[string]any); ok {
		if v := str(fp, "on_refusal"); v != "" {
			def.Failure.OnRefusal = stage.Policy(v)
		}
		if v := str(fp, "on_parse_error"); v != "" {
			def.Failure.OnParseError = stage.Policy(v)
		}
		if v := str(fp, "on_retry_exhausted"); v != "" {
			def.Failure.OnRetryExhausted = stage.Policy(v)
		}
	}
	if pt, ok := fm["prompt"].(map[string]any); ok {
		for _, raw := range list(pt, "parts") {
			part, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			p := stage.PromptPart{
				Source:   str(part, "source"),
				Label:    str(part, "label"),
				Required: boolOr(part, "required", true),
				Style:    stage.StyleMarkdown,
				Content:  str(part, "content"),
			}
			// Literal parts carry their text in content; the "literal"
			// source marker is not an input reference.
			if p.Source == "literal" {
				p.Source = ""
			}
			if str(part, "render_style") == "plain" {
				p.Style = stage.StylePlain
			}
			def.Parts = append(def.Parts, p)
		}
	}

	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("stage %q: %w", id, err)
	}
	return def, nil
}

// load reads <root>/<kind>/<id>.md and splits front matter from body.
// Unknown front matter keys are logged and dropped, never fatal.
func (s *Store) load(kind, id string, allowed []string) (map[string]any, string, error) {
	path := filepath.Join(s.root, kind, id+".md")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read metadata %s/%s: %w", kind, id, err)
	}

	fm, body, err := ParseFrontMatter(string(data))
	if err != nil {
		return nil, "", fmt.Errorf("metadata %s: %w", path, err)
	}

	allow := map[string]bool{}
	for _, k := range allowed {
		allow[k] = true
	}
	var extra []string
	for k := range fm {
		if !allow[k] {
			extra = append(extra, k)
			delete(fm, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		s.logger.Warn("ignoring unknown metadata keys", "source", path, "kind", kind, "id", id, "keys", extra)
	}

	return fm, body, nil
}

// ParseFrontMatter splits a markdown document into its TOML front matter,
// delimited by +++ lines, and the remaining body. A document without a
// leading delimiter is all body.
func ParseFrontMatter(text string) (map[string]any, string, error) {
	text = strings.TrimPrefix(text, "\uFEFF")
	lines := strings.Split(text, "\n")

	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.TrimSpace(line) == "+++" {
			start = i
		}
		break
	}
	if start < 0 {
		return map[string]any{}, strings.TrimLeft(text, "\n"), nil
	}

	end := -1
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "+++" {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, "", fmt.Errorf("missing closing front matter delimiter")
	}

	fm := map[string]any{}
	raw := strings.TrimSpace(strings.Join(lines[start+1:end], "\n"))
	if raw != "" {
		if err := toml.Unmarshal([]byte(raw), &fm); err != nil {
			return nil, "", fmt.Errorf("front matter: %w", err)
		}
	}

	body := strings.TrimLeft(strings.Join(lines[end+1:], "\n"), "\n")
	return fm, body, nil
}

func str(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func strOr(m map[string]any, key, def string) string {
	if v := str(m, key); v != "" {
		return v
	}
	return def
}

func boolOr(m map[string]any, key string, def bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return def
}

func intOr(m map[string]any, key string, def int) int {
	switch v := m[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

func list(m map[string]any, key string) []any {
	v, _ := m[key].([]any)
	return v
}

func strList(m map[string]any, key string) []string {
	var out []string
	for _, v := range list(m, key) {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
