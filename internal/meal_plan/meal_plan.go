package mealplan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lucsky/cuid"

	"recipe_site/internal/recipes"
)

var (
	ErrNotFound        = errors.New("meal plan entry not found")
	ErrIndexOutOfRange = errors.New("meal plan index out of range")
)

var (
	WeekDays  = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	MealSlots = []string{"breakfast", "lunch", "dinner"}
)

// Entry is one planned item. Entries without a link are free-text items.
type Entry struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Link     string   `json:"link,omitempty"`
	Image    string   `json:"image,omitempty"`
	Cost     *float64 `json:"cost,omitempty"`
	Leftover bool     `json:"leftover,omitempty"`
}

// NewRecipeEntry plans a recipe.
func NewRecipeEntry(r recipes.Recipe) Entry {
	e := Entry{Title: r.Title, Link: r.Link, Image: r.HeroImage()}
	if p, ok := r.Price(); ok {
		e.Cost = &p
	}
	return e
}

// NewCustomEntry plans a free-text item such as "rotisserie chicken".
func NewCustomEntry(text string) Entry {
	return Entry{Title: strings.TrimSpace(text)}
}

type Slot struct {
	Name    string
	Entries []Entry
}

type Day struct {
	Name  string
	Slots []Slot
}

// Plan maps day → meal slot → entries. Days and slots keep insertion order,
// which is also their JSON object key order.
type Plan struct {
	Days []Day
}

// Position addresses one entry.
type Position struct {
	Day   string `json:"day"`
	Slot  string `json:"slot"`
	Index int    `json:"index"`
}

func New() *Plan {
	return &Plan{}
}

// NewWeek returns an empty Monday..Sunday plan with the standard slots.
func NewWeek() *Plan {
	p := New()
	for _, d := range WeekDays {
		for _, s := range MealSlots {
			p.slot(d, s, true)
		}
	}
	return p
}

func (p *Plan) slot(day, slot string, create bool) *Slot {
	di := -1
	for i := range p.Days {
		if p.Days[i].Name == day {
			di = i
			break
		}
	}
	if di < 0 {
		if !create {
			return nil
		}
		p.Days = append(p.Days, Day{Name: day})
		di = len(p.Days) - 1
	}

	d := &p.Days[di]
	for i := range d.Slots {
		if d.Slots[i].Name == slot {
			return &d.Slots[i]
		}
	}
	if !create {
		return nil
	}
	d.Slots = append(d.Slots, Slot{Name: slot})
	return &d.Slots[len(d.Slots)-1]
}

// Entries returns the entries planned for day/slot.
func (p *Plan) Entries(day, slot string) []Entry {
	s := p.slot(day, slot, false)
	if s == nil {
		return nil
	}
	return s.Entries
}

// Add appends e to day/slot, creating both as needed, and returns the
// stored entry. Slots hold any number of entries.
func (p *Plan) Add(day, slot string, e Entry) Entry {
	if e.ID == "" {
		e.ID = cuid.New()
	}
	s := p.slot(day, slot, true)
	s.Entries = append(s.Entries, e)
	return e
}

// Remove deletes the entry with id from day/slot.
func (p *Plan) Remove(day, slot, id string) (Entry, error) {
	s := p.slot(day, slot, false)
	if s == nil {
		return Entry{}, ErrNotFound
	}
	for i, e := range s.Entries {
		if e.ID == id {
			s.Entries = append(s.Entries[:i], s.Entries[i+1:]...)
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// Move relocates the entry at from to to, within one slot or across slots.
// to.Index is the position in the target slot after removal and is clamped
// to the end of the slot.
func (p *Plan) Move(from, to Position) (Entry, error) {
	src := p.slot(from.Day, from.Slot, false)
	if src == nil || from.Index < 0 || from.Index >= len(src.Entries) {
		return Entry{}, fmt.Errorf("move from %s/%s[%d]: %w", from.Day, from.Slot, from.Index, ErrIndexOutOfRange)
	}
	if to.Index < 0 {
		return Entry{}, fmt.Errorf("move to %s/%s[%d]: %w", to.Day, to.Slot, to.Index, ErrIndexOutOfRange)
	}

	e := src.Entries[from.Index]
	src.Entries = append(src.Entries[:from.Index], src.Entries[from.Index+1:]...)

	// src is stale once slot may append
	dst := p.slot(to.Day, to.Slot, true)
	idx := min(to.Index, len(dst.Entries))
	dst.Entries = append(dst.Entries, Entry{})
	copy(dst.Entries[idx+1:], dst.Entries[idx:])
	dst.Entries[idx] = e
	return e, nil
}

// Find locates the entry with id.
func (p *Plan) Find(id string) (Position, Entry, bool) {
	for _, d := range p.Days {
		for _, s := range d.Slots {
			for i, e := range s.Entries {
				if e.ID == id {
					return Position{Day: d.Name, Slot: s.Name, Index: i}, e, true
				}
			}
		}
	}
	return Position{}, Entry{}, false
}

// Walk visits every entry in day, slot and entry order.
func (p *Plan) Walk(fn func(day, slot string, e Entry)) {
	for _, d := range p.Days {
		for _, s := range d.Slots {
			for _, e := range s.Entries {
				fn(d.Name, s.Name, e)
			}
		}
	}
}

func (p *Plan) Len() int {
	n := 0
	p.Walk(func(string, string, Entry) { n++ })
	return n
}

// TotalCost sums the cost of entries that carry one.
func (p *Plan) TotalCost() float64 {
	total := 0.0
	p.Walk(func(_, _ string, e Entry) {
		if e.Cost != nil {
			total += *e.Cost
		}
	})
	return total
}

// EnsureIDs gives an id to entries stored without one.
func (p *Plan) EnsureIDs() bool {
	changed := false
	for di := range p.Days {
		for si := range p.Days[di].Slots {
			entries := p.Days[di].Slots[si].Entries
			for i := range entries {
				if entries[i].ID == "" {
					entries[i].ID = cuid.New()
					changed = true
				}
			}
		}
	}
	return changed
}

func (p *Plan) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range p.Days {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, d.Name); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, s := range d.Slots {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, s.Name); err != nil {
				return nil, err
			}
			entries := s.Entries
			if entries == nil {
				entries = []Entry{}
			}
			b, err := json.Marshal(entries)
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	b, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(b)
	buf.WriteByte(':')
	return nil
}

func (p *Plan) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	var days []Day
	for dec.More() {
		dayName, err := readKey(dec)
		if err != nil {
			return err
		}
		if err := expectDelim(dec, '{'); err != nil {
			return fmt.Errorf("day %q: %w", dayName, err)
		}
		day := Day{Name: dayName}
		for dec.More() {
			slotName, err := readKey(dec)
			if err != nil {
				return err
			}
			var entries []Entry
			if err := dec.Decode(&entries); err != nil {
				return fmt.Errorf("slot %s/%s: %w", dayName, slotName, err)
			}
			day.Slots = append(day.Slots, Slot{Name: slotName, Entries: entries})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return err
		}
		days = append(days, day)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}

	p.Days = days
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}
