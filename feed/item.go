package feed

import (
	"fmt"

	"snapfeed/common"
)

// Item is an opaque feed entry. Controller never looks beyond its identifier,
// which must be stable and unique within the feed.
type Item interface {
	ID() string
}

// Classified may be implemented by items which know how expensive they are to
// preload.
type Classified interface {
	PreloadClass() common.PreloadClass
}

// Classifier tags items by identifier, for example from a persistent cache of
// already loaded content.
type Classifier interface {
	Classify(id string) (common.PreloadClass, bool)
}

// ReadyRecorder is notified when preload of an item completes. Classifier
// implementations usually implement it as well to remember loaded items.
type ReadyRecorder interface {
	MarkReady(id string) error
}

// Key is the simplest Item - its own identifier.
type Key string

func (k Key) ID() string {
	return string(k)
}

// Keys makes items out of identifiers.
func Keys(ids ...string) []Item {
	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, Key(id))
	}
	return items
}

func indexItems(items []Item) (map[string]int, error) {
	pos := make(map[string]int, len(items))
	for i, it := range items {
		id := it.ID()
		if _, exists := pos[id]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateItem, id)
		}
		pos[id] = i
	}
	return pos, nil
}
