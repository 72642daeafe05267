package pages

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/sajari/fuzzy"
	"go.uber.org/zap"

	"mvcclock/src/logging"
)

// DefaultPage is the page every unrecognised identifier falls through to.
const DefaultPage = "index"

const (
	maxSuggestions = 3
	maxDistance    = 2
)

var (
	// ErrEmptyPageID is returned when registering a page without an identifier.
	ErrEmptyPageID = errors.New("pages: empty page id")
	// ErrDuplicatePage is returned when a page identifier is registered twice.
	ErrDuplicatePage = errors.New("pages: page already registered")
	// ErrNoDefaultPage is returned by Boot when neither the requested nor the default page exists.
	ErrNoDefaultPage = errors.New("pages: default page not registered")
)

// Initializer wires and starts the components of one page.
type Initializer func(env Env) (*Page, error)

// Registry maps page identifiers to their initializers.
type Registry struct {
	mu       sync.RWMutex
	inits    map[string]Initializer
	fallback string
	speller  *fuzzy.Model
	log      *zap.SugaredLogger
}

// NewRegistry builds an empty registry falling back to DefaultPage.
func NewRegistry(log *zap.SugaredLogger) *Registry {
	if log == nil {
		log = logging.Nop()
	}
	speller := fuzzy.NewModel()
	speller.SetThreshold(1)
	speller.SetDepth(maxDistance)
	return &Registry{
		inits:    map[string]Initializer{},
		fallback: DefaultPage,
		speller:  speller,
		log:      log.With("source", "pages"),
	}
}

// Default returns a registry with the index clock page registered.
func Default(log *zap.SugaredLogger) *Registry {
	r := NewRegistry(log)
	_ = r.Register(DefaultPage, Index)
	return r
}

// Register adds the initializer for id.
func (r *Registry) Register(id string, initializer Initializer) error {
	if id == "" {
		return ErrEmptyPageID
	}
	if initializer == nil {
		return fmt.Errorf("pages: nil initializer for %q", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.inits[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePage, id)
	}
	r.inits[id] = initializer
	r.speller.TrainWord(id)
	return nil
}

// IDs lists the registered identifiers.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.inits))
	for id := range r.inits {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve looks id up, falling back to the default page. known is false when
// the fallback was used.
func (r *Registry) Resolve(id string) (resolved string, initializer Initializer, known bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fn, ok := r.inits[id]; ok {
		return id, fn, true
	}
	return r.fallback, r.inits[r.fallback], false
}

// Suggest returns up to three registered identifiers close to id, nearest first.
func (r *Registry) Suggest(id string) []string {
	if id == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]bool{}
	var candidates []string
	for _, word := range r.speller.Suggestions(id, false) {
		if _, ok := r.inits[word]; ok && !seen[word] {
			seen[word] = true
			candidates = append(candidates, word)
		}
	}
	for known := range r.inits {
		if !seen[known] && levenshtein.ComputeDistance(id, known) <= maxDistance {
			seen[known] = true
			candidates = append(candidates, known)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		di := levenshtein.ComputeDistance(id, candidates[i])
		dj := levenshtein.ComputeDistance(id, candidates[j])
		if di == dj {
			return candidates[i] < candidates[j]
		}
		return di < dj
	})
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	return candidates
}

// Boot runs the initializer registered for id, or the default one for an
// unrecognised id.
func (r *Registry) Boot(id string, env Env) (*Page, error) {
	r.log.Debugw("document.ready :: " + id)
	resolved, initializer, known := r.Resolve(id)
	if !known {
		if suggestions := r.Suggest(id); len(suggestions) > 0 {
			r.log.Debugw("unknown page, using default", "page", id, "default", resolved, "did_you_mean", suggestions)
		} else {
			r.log.Debugw("unknown page, using default", "page", id, "default", resolved)
		}
	}
	if initializer == nil {
		return nil, ErrNoDefaultPage
	}
	page, err := initializer(env.withDefaults())
	if err != nil {
		return nil, fmt.Errorf("init page %s: %w", resolved, err)
	}
	page.ID = resolved
	return page, nil
}
