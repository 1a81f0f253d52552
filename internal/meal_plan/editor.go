package mealplan

import (
	"errors"
	"fmt"
	"strings"

	"recipe_site/internal/recipes"
)

var ErrInvalidTransition = errors.New("invalid slot editor transition")

type EditState int

const (
	Idle EditState = iota
	Searching
	Adding
)

func (s EditState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Adding:
		return "adding"
	default:
		return fmt.Sprintf("EditState(%d)", int(s))
	}
}

// SlotEditor drives adding one item to a day/slot:
// Idle → Searching → Adding → Idle, with Cancel returning to Idle from anywhere.
type SlotEditor struct {
	Day  string
	Slot string

	state   EditState
	query   string
	results []recipes.Recipe
	pending Entry
}

func NewSlotEditor(day, slot string) *SlotEditor {
	return &SlotEditor{Day: day, Slot: slot}
}

func (e *SlotEditor) State() EditState { return e.state }

func (e *SlotEditor) Query() string { return e.query }

func (e *SlotEditor) Results() []recipes.Recipe { return e.results }

// Pending returns the entry chosen in the Adding state.
func (e *SlotEditor) Pending() (Entry, bool) {
	return e.pending, e.state == Adding
}

func (e *SlotEditor) transition(from, to EditState) error {
	if e.state != from {
		return fmt.Errorf("%s → %s from %s: %w", from, to, e.state, ErrInvalidTransition)
	}
	e.state = to
	return nil
}

// Open starts a search for the slot.
func (e *SlotEditor) Open() error {
	return e.transition(Idle, Searching)
}

// Search runs a title query against cat. Searching may be repeated.
func (e *SlotEditor) Search(cat recipes.Catalog, query string) ([]recipes.Recipe, error) {
	if e.state != Searching {
		return nil, fmt.Errorf("search from %s: %w", e.state, ErrInvalidTransition)
	}
	e.query = query
	e.results = cat.Search(query)
	return e.results, nil
}

// Choose picks the i-th search result.
func (e *SlotEditor) Choose(i int) (Entry, error) {
	if e.state != Searching {
		return Entry{}, fmt.Errorf("choose from %s: %w", e.state, ErrInvalidTransition)
	}
	if i < 0 || i >= len(e.results) {
		return Entry{}, fmt.Errorf("choose %d of %d: %w", i, len(e.results), ErrIndexOutOfRange)
	}
	e.pending = NewRecipeEntry(e.results[i])
	e.state = Adding
	return e.pending, nil
}

// ChooseCustom picks a free-text item, defaulting to the current query.
func (e *SlotEditor) ChooseCustom(text string) (Entry, error) {
	if e.state != Searching {
		return Entry{}, fmt.Errorf("choose custom from %s: %w", e.state, ErrInvalidTransition)
	}
	if strings.TrimSpace(text) == "" {
		text = e.query
	}
	if strings.TrimSpace(text) == "" {
		return Entry{}, errors.New("custom item needs text")
	}
	e.pending = NewCustomEntry(text)
	e.state = Adding
	return e.pending, nil
}

// SetLeftover flags the pending entry as leftovers.
func (e *SlotEditor) SetLeftover(on bool) error {
	if e.state != Adding {
		return fmt.Errorf("set leftover from %s: %w", e.state, ErrInvalidTransition)
	}
	e.pending.Leftover = on
	return nil
}

// Commit adds the pending entry to p and resets the editor.
func (e *SlotEditor) Commit(p *Plan) (Entry, error) {
	if err := e.transition(Adding, Idle); err != nil {
		return Entry{}, err
	}
	added := p.Add(e.Day, e.Slot, e.pending)
	e.reset()
	return added, nil
}

func (e *SlotEditor) Cancel() {
	e.state = Idle
	e.reset()
}

func (e *SlotEditor) reset() {
	e.query = ""
	e.results = nil
	e.pending = Entry{}
}
