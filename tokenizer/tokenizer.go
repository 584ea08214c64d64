package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/randool/chatmesh/core"
)

// Estimator approximates the prompt cost of a turn sequence for one model
// family. Estimates are deterministic for identical input and monotonically
// non-decreasing as turns are appended.
type Estimator interface {
	// Estimate returns the approximate token count of the turns.
	Estimate(turns []core.Turn) (int, error)
	// Model returns the model identifier the estimate is calibrated for.
	Model() string
}

// Framing overheads of the chat markup the estimate models. Every turn is
// wrapped as <|start|>{role/name}\n{content}<|end|>\n and every reply is
// primed with <|start|>assistant.
const (
	turnOverhead = 4
	replyPrimer  = 2
	// A name field replaces the role in the framing; the role itself is
	// always one token, so a named turn charges the name minus one.
	nameAdjust = -1
)

// modelEncodings maps supported model identifiers to their tiktoken
// encoding. Unknown identifiers fail with core.ErrUnsupportedModel instead
// of silently guessing.
var modelEncodings = map[string]string{
	"gpt-3.5-turbo":      "cl100k_base",
	"gpt-3.5-turbo-0301": "cl100k_base",
	"gpt-3.5-turbo-16k":  "cl100k_base",
	"gpt-4":              "cl100k_base",
	"gpt-4-turbo":        "cl100k_base",
	"gpt-4o":             "o200k_base",
	"gpt-4o-mini":        "o200k_base",
}

// Tiktoken is the default Estimator, backed by the tiktoken BPE encodings.
// The encoding is initialized lazily (the first use may download encoding
// data) and the zero cost of construction keeps Tiktoken cheap to wire into
// every dialog manager.
type Tiktoken struct {
	model    string
	encoding string

	once    sync.Once
	enc     *tiktoken.Tiktoken
	initErr error
}

// New creates an estimator for the given model identifier.
func New(model string) (*Tiktoken, error) {
	encoding, ok := modelEncodings[model]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedModel, model)
	}
	return &Tiktoken{model: model, encoding: encoding}, nil
}

// NewApproximate creates an estimator for a model without a registered
// encoding, approximating with cl100k_base. Budget enforcement only needs a
// consistent estimate, not an exact one, so this keeps unknown and
// non-OpenAI models usable.
func NewApproximate(model string) *Tiktoken {
	return &Tiktoken{model: model, encoding: "cl100k_base"}
}

func (t *Tiktoken) init() error {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.initErr = fmt.Errorf("init tiktoken encoding %s: %w", t.encoding, err)
			return
		}
		t.enc = enc
	})
	return t.initErr
}

// Model returns the model identifier this estimator is calibrated for.
func (t *Tiktoken) Model() string { return t.model }

// Estimate implements Estimator using the documented framing algorithm.
func (t *Tiktoken) Estimate(turns []core.Turn) (int, error) {
	if err := t.init(); err != nil {
		return 0, err
	}
	total := 0
	for _, turn := range turns {
		total += turnOverhead
		total += len(t.enc.Encode(string(turn.Role), nil, nil))
		total += len(t.enc.Encode(turn.Content, nil, nil))
		if turn.Name != "" {
			total += len(t.enc.Encode(turn.Name, nil, nil)) + nameAdjust
		}
	}
	total += replyPrimer
	return total, nil
}
