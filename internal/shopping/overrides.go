package shopping

import (
	"errors"
	"fmt"
	"strings"
)

var ErrIndexOutOfRange = errors.New("shopping list index out of range")

// Override is the manual state of one shopping list line.
type Override struct {
	Key     string `json:"key"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
	Edited  bool   `json:"edited,omitempty"`
}

// List is the user's ordered, checkable view of the shopping list.
type List struct {
	Items []Override `json:"items"`
}

// Reconcile lays freshly computed items over the previous manual state.
// Lines still present keep their position, checked state and edited text;
// lines that vanished from the plan are dropped; new lines are inserted
// before the first checked line.
func Reconcile(computed []Item, prev List) List {
	byKey := make(map[string]Item, len(computed))
	for _, it := range computed {
		byKey[it.Key] = it
	}
	// A bucket's key can move between singular and plural as names join
	// it, so a stale key still matches the bucket holding its other form.
	match := func(key string) (Item, bool) {
		if it, ok := byKey[key]; ok {
			return it, true
		}
		for _, it := range computed {
			if sameItem(key, it.Key) {
				return it, true
			}
		}
		return Item{}, false
	}

	seen := make(map[string]struct{}, len(prev.Items))
	var kept []Override
	for _, o := range prev.Items {
		it, ok := match(o.Key)
		if !ok {
			continue
		}
		if _, dup := seen[it.Key]; dup {
			continue
		}
		seen[it.Key] = struct{}{}
		o.Key = it.Key
		if !o.Edited {
			o.Text = it.Text()
		}
		kept = append(kept, o)
	}

	var fresh []Override
	for _, it := range computed {
		if _, ok := seen[it.Key]; ok {
			continue
		}
		fresh = append(fresh, Override{Key: it.Key, Text: it.Text()})
	}

	at := len(kept)
	for i, o := range kept {
		if o.Checked {
			at = i
			break
		}
	}

	items := make([]Override, 0, len(kept)+len(fresh))
	items = append(items, kept[:at]...)
	items = append(items, fresh...)
	items = append(items, kept[at:]...)
	return List{Items: items}
}

func (l *List) check(i int) error {
	if i < 0 || i >= len(l.Items) {
		return fmt.Errorf("item %d of %d: %w", i, len(l.Items), ErrIndexOutOfRange)
	}
	return nil
}

// Check sets the checked state of item i. Checked items move to the bottom,
// unchecked items to the top.
func (l *List) Check(i int, on bool) error {
	if err := l.check(i); err != nil {
		return err
	}
	o := l.Items[i]
	o.Checked = on
	rest := append(l.Items[:i:i], l.Items[i+1:]...)
	if on {
		l.Items = append(rest, o)
	} else {
		l.Items = append([]Override{o}, rest...)
	}
	return nil
}

// MoveUp swaps item i with the one above it. The top item stays put.
func (l *List) MoveUp(i int) error {
	if err := l.check(i); err != nil {
		return err
	}
	if i > 0 {
		l.Items[i-1], l.Items[i] = l.Items[i], l.Items[i-1]
	}
	return nil
}

// MoveDown swaps item i with the one below it. The bottom item stays put.
func (l *List) MoveDown(i int) error {
	if err := l.check(i); err != nil {
		return err
	}
	if i < len(l.Items)-1 {
		l.Items[i+1], l.Items[i] = l.Items[i], l.Items[i+1]
	}
	return nil
}

// Edit replaces the text of item i. Empty text clears the edit, so the next
// Reconcile restores the computed text.
func (l *List) Edit(i int, text string) error {
	if err := l.check(i); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	l.Items[i].Text = text
	l.Items[i].Edited = text != ""
	return nil
}

// Remaining counts unchecked items.
func (l List) Remaining() int {
	n := 0
	for _, o := range l.Items {
		if !o.Checked {
			n++
		}
	}
	return n
}
