// Package prompt renders conversation state into the directive instruction
// sent with every utterance to the interviewer endpoint.
//
// Composition is a pure function of the phase, the history and the fact
// sheet: the same input always yields byte-identical output.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AltairaLabs/interviewkit/runtime/conversation"
	"github.com/AltairaLabs/interviewkit/runtime/template"
	"github.com/AltairaLabs/interviewkit/runtime/types"
)

// Placeholder names available to templates.
const (
	VarPersona  = "persona"
	VarPhase    = "phase"
	VarGuidance = "guidance"
	VarAvoid    = "avoid"
	VarFacts    = "facts"
	VarHistory  = "history"
)

// requiredVars must appear in every template.
var requiredVars = []string{VarHistory}

var knownVars = map[string]bool{
	VarPersona: true, VarPhase: true, VarGuidance: true,
	VarAvoid: true, VarFacts: true, VarHistory: true,
}

// DefaultPersona opens every system prompt.
const DefaultPersona = "You are a friendly but professional job interviewer conducting a spoken mock interview with a student candidate."

// DefaultTemplate lays out the system prompt sections.
const DefaultTemplate = `{{persona}}

Current interview phase: {{phase}}
{{guidance}}

Do not repeat questions that were already asked:
{{avoid}}

Known facts about the candidate:
{{facts}}

Conversation so far:
{{history}}

Reply with your next single question or comment as the interviewer. Keep it short and natural for spoken conversation.`

const noneYet = "- (none yet)"

// DefaultGuidance returns the built-in instruction for each phase.
func DefaultGuidance() map[conversation.Phase]string {
	return map[conversation.Phase]string{
		conversation.PhaseIntroduction: "Help the candidate introduce themselves: name, school or current role, and what they are studying or working on.",
		conversation.PhaseExperience:   "Ask about concrete past experience: projects, internships, part-time work, and the candidate's own contribution.",
		conversation.PhaseSkills:       "Probe practical skills and tools. Ask for a specific example where the candidate applied a skill.",
		conversation.PhaseMotivation:   "Explore why the candidate wants this kind of role and what they hope to achieve.",
		conversation.PhaseClosing:      "Wrap up the interview. Invite final questions from the candidate and thank them for their time.",
	}
}

// Config configures a Composer. Zero fields fall back to the defaults.
type Config struct {
	Persona  string
	Template string
	Guidance map[conversation.Phase]string
}

// Input is the conversation state to render.
type Input struct {
	Phase conversation.Phase
	Turns []types.Turn
	Facts *conversation.FactSheet
}

// Prompt is the rendered instruction plus its machine-readable context.
type Prompt struct {
	SystemPrompt string
	ContextJSON  string
}

// Composer renders prompts. It holds no mutable state.
type Composer struct {
	persona  string
	tmpl     string
	guidance map[conversation.Phase]string
	renderer *template.Renderer
}

// NewComposer validates cfg and creates a Composer.
func NewComposer(cfg Config) (*Composer, error) {
	c := &Composer{
		persona:  cfg.Persona,
		tmpl:     cfg.Template,
		guidance: DefaultGuidance(),
		renderer: template.NewRenderer(),
	}
	if c.persona == "" {
		c.persona = DefaultPersona
	}
	if c.tmpl == "" {
		c.tmpl = DefaultTemplate
	}
	for phase, text := range cfg.Guidance {
		if text != "" {
			c.guidance[phase] = text
		}
	}

	used := make(map[string]string)
	for _, name := range template.Placeholders(c.tmpl) {
		if !knownVars[name] {
			return nil, fmt.Errorf("prompt template uses unknown placeholder %q", name)
		}
		used[name] = name
	}
	if err := c.renderer.ValidateRequiredVars(requiredVars, used); err != nil {
		return nil, fmt.Errorf("prompt template: %w", err)
	}
	return c, nil
}

// Compose renders the system prompt and context JSON for in.
func (c *Composer) Compose(in Input) (Prompt, error) {
	facts := in.Facts
	if facts == nil {
		facts = &conversation.FactSheet{}
	}

	system, err := c.renderer.Render(c.tmpl, map[string]string{
		VarPersona:  c.persona,
		VarPhase:    string(in.Phase),
		VarGuidance: c.guidance[in.Phase],
		VarAvoid:    renderQuestions(in.Turns),
		VarFacts:    renderFacts(facts),
		VarHistory:  RenderHistory(in.Turns),
	})
	if err != nil {
		return Prompt{}, fmt.Errorf("render system prompt: %w", err)
	}

	ctxJSON, err := contextJSON(in, facts)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{SystemPrompt: system, ContextJSON: ctxJSON}, nil
}

// RenderHistory renders turns one per line in chronological order with speaker labels.
func RenderHistory(turns []types.Turn) string {
	if len(turns) == 0 {
		return "(no conversation yet)"
	}
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(t.Role.Label())
		b.WriteString(": ")
		b.WriteString(singleLine(t.Content))
	}
	return b.String()
}

func renderQuestions(turns []types.Turn) string {
	var lines []string
	for _, t := range turns {
		if t.Role == types.RoleAssistant {
			lines = append(lines, "- "+singleLine(t.Content))
		}
	}
	if len(lines) == 0 {
		return noneYet
	}
	return strings.Join(lines, "\n")
}

func renderFacts(facts *conversation.FactSheet) string {
	known := facts.Known()
	if len(known) == 0 {
		return noneYet
	}
	lines := make([]string, 0, len(known))
	for _, kind := range known {
		lines = append(lines, "- "+string(kind)+": "+facts.Value(kind))
	}
	return strings.Join(lines, "\n")
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type promptContext struct {
	Phase          conversation.Phase  `json:"phase"`
	TurnCount      int                 `json:"turnCount"`
	UserTurns      int                 `json:"userTurns"`
	Facts          map[string][]string `json:"facts"`
	AskedQuestions []string            `json:"askedQuestions"`
}

func contextJSON(in Input, facts *conversation.FactSheet) (string, error) {
	pc := promptContext{
		Phase:          in.Phase,
		TurnCount:      len(in.Turns),
		Facts:          facts.Map(),
		AskedQuestions: []string{},
	}
	for _, t := range in.Turns {
		switch t.Role {
		case types.RoleUser:
			pc.UserTurns++
		case types.RoleAssistant:
			pc.AskedQuestions = append(pc.AskedQuestions, t.Content)
		}
	}
	data, err := json.Marshal(pc)
	if err != nil {
		return "", fmt.Errorf("marshal prompt context: %w", err)
	}
	return string(data), nil
}
