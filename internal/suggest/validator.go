package suggest

import (
	"container/list"
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/medfinder/medfinder/internal/llm"
)

// Validation is the generative model's verdict on a medicine name.
type Validation struct {
	Valid       bool
	Corrected   string
	Suggestions []string
}

// Validator asks the generative model whether a medicine name is real and,
// if not, what the user probably meant. Results are memoized in a bounded
// LRU keyed by the lowercased name; concurrent identical lookups are
// collapsed into one model call.
type Validator struct {
	provider  llm.Provider
	maxTokens int

	group singleflight.Group

	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type validatorEntry struct {
	key    string
	result Validation
}

// NewValidator creates a validator caching up to capacity verdicts.
func NewValidator(provider llm.Provider, capacity int) *Validator {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Validator{
		provider:  provider,
		maxTokens: 200,
		capacity:  capacity,
		order:     list.New(),
		entries:   make(map[string]*list.Element),
	}
}

// Validate returns the model's verdict for name.
func (v *Validator) Validate(ctx context.Context, name string) (Validation, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Validation{}, fmt.Errorf("empty medicine name")
	}
	if cached, ok := v.get(key); ok {
		return cached, nil
	}

	res, err, _ := v.group.Do(key, func() (interface{}, error) {
		if cached, ok := v.get(key); ok {
			return cached, nil
		}
		verdict, err := v.ask(ctx, name)
		if err != nil {
			return Validation{}, err
		}
		v.put(key, verdict)
		return verdict, nil
	})
	if err != nil {
		return Validation{}, err
	}
	return res.(Validation), nil
}

func (v *Validator) ask(ctx context.Context, name string) (Validation, error) {
	prompt := fmt.Sprintf(`Is %q a real medicine or active ingredient name?
Answer with exactly one of these line formats and nothing else:
VALID
CORRECT_NAME: <the properly spelled name>
SUGGESTIONS: <name1>, <name2>, <name3>`, name)

	raw, err := v.provider.Complete(ctx, prompt, 0, v.maxTokens)
	if err != nil {
		return Validation{}, err
	}
	return parseVerdict(raw), nil
}

// parseVerdict reads the first recognizable line of the model's answer.
// Unrecognized output counts as valid so a chatty model never blocks a
// legitimate name.
func parseVerdict(raw string) Validation {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.EqualFold(line, "VALID"):
			return Validation{Valid: true}
		case strings.HasPrefix(strings.ToUpper(line), "CORRECT_NAME:"):
			corrected := strings.TrimSpace(line[len("CORRECT_NAME:"):])
			if corrected != "" {
				return Validation{Corrected: corrected, Suggestions: []string{corrected}}
			}
		case strings.HasPrefix(strings.ToUpper(line), "SUGGESTIONS:"):
			var names []string
			for _, part := range strings.Split(line[len("SUGGESTIONS:"):], ",") {
				if p := strings.TrimSpace(part); p != "" {
					names = append(names, p)
				}
			}
			if len(names) > 0 {
				return Validation{Suggestions: names}
			}
		}
	}
	return Validation{Valid: true}
}

func (v *Validator) get(key string) (Validation, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	elem, ok := v.entries[key]
	if !ok {
		return Validation{}, false
	}
	v.order.MoveToFront(elem)
	return elem.Value.(*validatorEntry).result, true
}

func (v *Validator) put(key string, result Validation) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if elem, ok := v.entries[key]; ok {
		v.order.MoveToFront(elem)
		elem.Value.(*validatorEntry).result = result
		return
	}
	elem := v.order.PushFront(&validatorEntry{key: key, result: result})
	v.entries[key] = elem
	for v.order.Len() > v.capacity {
		oldest := v.order.Back()
		if oldest == nil {
			break
		}
		v.order.Remove(oldest)
		delete(v.entries, oldest.Value.(*validatorEntry).key)
	}
}
