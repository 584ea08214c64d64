package personality

import (
	"fmt"
	"os"
	"strings"
)

// Placeholder markers substituted verbatim into the plugin prompt templates.
const (
	PlaceholderHistory   = "{{dialog_history}}"
	PlaceholderKnowledge = "{{knowledge}}"
	PlaceholderPlugins   = "{{plugins}}"
)

// Prompts holds the two fixed templates of the plugin pipeline. The detect
// template receives the dialog transcript; the synthesize template receives
// the transcript plus the concatenated plugin results.
type Prompts struct {
	Detect     string
	Synthesize string
}

// DefaultPrompts returns built-in templates so the pipeline works without
// operator-provided files.
func DefaultPrompts() Prompts {
	return Prompts{Detect: defaultDetectPrompt, Synthesize: defaultSynthesizePrompt}
}

// LoadPrompts reads the two templates from files, falling back to the
// built-in template for any empty path.
func LoadPrompts(detectPath, synthesizePath string) (Prompts, error) {
	p := DefaultPrompts()
	if detectPath != "" {
		data, err := os.ReadFile(detectPath)
		if err != nil {
			return Prompts{}, fmt.Errorf("read detect prompt: %w", err)
		}
		p.Detect = string(data)
	}
	if synthesizePath != "" {
		data, err := os.ReadFile(synthesizePath)
		if err != nil {
			return Prompts{}, fmt.Errorf("read synthesize prompt: %w", err)
		}
		p.Synthesize = string(data)
	}
	return p, nil
}

// RenderDetect substitutes the transcript and the available plugin listing
// into the detect template. Templates without the plugins placeholder carry
// their own hard-coded API list and are left alone.
func (p Prompts) RenderDetect(transcript, plugins string) string {
	out := strings.ReplaceAll(p.Detect, PlaceholderHistory, transcript)
	return strings.ReplaceAll(out, PlaceholderPlugins, plugins)
}

// RenderSynthesize substitutes the transcript and the concatenated plugin
// results into the synthesize template.
func (p Prompts) RenderSynthesize(transcript, knowledge string) string {
	out := strings.ReplaceAll(p.Synthesize, PlaceholderHistory, transcript)
	return strings.ReplaceAll(out, PlaceholderKnowledge, knowledge)
}

const defaultDetectPrompt = `You can call external APIs to answer questions you cannot answer from the dialog alone. The available APIs are:
{{plugins}}

Here is the dialog so far:
{{dialog_history}}

If answering the last user message requires external knowledge, reply with ONLY a JSON array of API calls, for example:
[{"API": "WikiSearch", "query": "Coca-Cola other names"}]

If no API call is needed, reply to the user directly without any JSON array.`

const defaultSynthesizePrompt = `Here is the dialog so far:
{{dialog_history}}

Here are results retrieved from external APIs:
{{knowledge}}

Using the dialog and the retrieved results, write the best possible reply to the last user message. Do not mention the APIs or the retrieval step.`
