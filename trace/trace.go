// Package trace reads recorded scroll sessions and replays them against feed
// controller over a manual clock, so the same input always produces the same
// timeline.
package trace

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	validator "github.com/go-playground/validator/v10"
	"github.com/rupor-github/gencfg"
	yaml "gopkg.in/yaml.v3"

	"snapfeed/common"
	"snapfeed/config"
	"snapfeed/feed"
)

// ErrExpectation is returned when replayed trace does not meet its
// expectations.
var ErrExpectation = errors.New("expectation failed")

type (
	// ItemSpec describes feed item of a trace.
	ItemSpec struct {
		ID    string               `yaml:"id" validate:"required"`
		Kind  common.MediaKind     `yaml:"kind,omitempty"`
		Class *common.PreloadClass `yaml:"class,omitempty"`
		// number of first mounts of item media which fail to activate
		FailAttach int `yaml:"fail_attach,omitempty" validate:"gte=0"`
	}

	// Expect lists assertions checked at the point of trace, nil fields are
	// not checked.
	Expect struct {
		Index  *int                 `yaml:"index,omitempty"`
		Active *string              `yaml:"active,omitempty"`
		Phase  *common.GesturePhase `yaml:"phase,omitempty"`
		// identifier of the only item with active media, empty - nothing plays
		Playing *string `yaml:"playing,omitempty"`
		Muted   *bool   `yaml:"muted,omitempty"`
		// number of programmatic scrolls issued so far
		Scrolls *int                         `yaml:"scrolls,omitempty" validate:"omitempty,gte=0"`
		Status  map[string]common.ItemStatus `yaml:"status,omitempty"`
		// preload requests issued so far, in order
		Requested []string `yaml:"requested,omitempty"`
	}

	Event struct {
		Op       Op      `yaml:"op"`
		Offset   float64 `yaml:"offset,omitempty"`
		Delta    float64 `yaml:"delta,omitempty"`
		Velocity float64 `yaml:"velocity,omitempty"`
		Momentum bool    `yaml:"momentum,omitempty"`
		Index    int     `yaml:"index,omitempty"`
		// nil means animated
		Animated *bool      `yaml:"animated,omitempty"`
		Ratio    float64    `yaml:"ratio,omitempty" validate:"gte=0,lte=1"`
		Ms       int        `yaml:"ms,omitempty" validate:"gte=0"`
		ID       string     `yaml:"id,omitempty"`
		Error    string     `yaml:"error,omitempty"`
		Page     float64    `yaml:"page,omitempty"`
		Muted    bool       `yaml:"muted,omitempty"`
		Items    []ItemSpec `yaml:"items,omitempty" validate:"dive"`
		Expect   *Expect    `yaml:"expect,omitempty"`
	}

	Trace struct {
		Title      string  `yaml:"title" validate:"required"`
		PageLength float64 `yaml:"page_length" validate:"gt=0"`
		Muted      *bool   `yaml:"muted,omitempty"`
		// complete every preload request as soon as it is issued
		AutoPreload bool       `yaml:"auto_preload,omitempty"`
		Items       []ItemSpec `yaml:"items" validate:"dive"`
		// overrides of feed configuration section
		Feed   yaml.Node `yaml:"feed,omitempty" validate:"-"`
		Events []Event   `yaml:"events" validate:"required,dive"`

		// Source is where trace was loaded from.
		Source string `yaml:"-"`
	}
)

// Load reads trace from file.
func Load(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open trace: %w", err)
	}
	defer f.Close()
	return Read(f, path)
}

// Read decodes and validates trace, source is only used for reporting.
func Read(r io.Reader, source string) (*Trace, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read trace %s: %w", source, err)
	}
	tr := &Trace{Source: source}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(tr); err != nil {
		return nil, fmt.Errorf("unable to decode trace %s: %w", source, err)
	}
	if err := gencfg.Validate(tr, gencfg.WithAdditionalChecks(traceChecks)); err != nil {
		return nil, fmt.Errorf("bad trace %s: %w", source, err)
	}
	return tr, nil
}

// needsID lists operations addressing a single item.
var needsID = map[Op]bool{
	OpAttach:      true,
	OpDetach:      true,
	OpAttachFail:  true,
	OpAttachOk:    true,
	OpPreloadDone: true,
	OpRetry:       true,
}

// traceChecks validates per operation requirements of events.
func traceChecks(sl validator.StructLevel) {
	tr, ok := sl.Current().Interface().(Trace)
	if !ok {
		return
	}
	for i, ev := range tr.Events {
		field := fmt.Sprintf("Events[%d]", i)
		switch {
		case !ev.Op.IsValid():
			sl.ReportError(ev.Op, field+".Op", "Op", "op", "")
		case needsID[ev.Op] && ev.ID == "":
			sl.ReportError(ev.ID, field+".ID", "ID", "required_for_"+ev.Op.String(), "")
		case ev.Op == OpResize && !(ev.Page > 0):
			sl.ReportError(ev.Page, field+".Page", "Page", "gt", "0")
		case ev.Op == OpAdvance && ev.Ms <= 0:
			sl.ReportError(ev.Ms, field+".Ms", "Ms", "gt", "0")
		case ev.Op == OpExpect && ev.Expect == nil:
			sl.ReportError(ev.Expect, field+".Expect", "Expect", "required_for_expect", "")
		}
	}
}

// feedConfig applies trace overrides to base configuration. Unknown keys are
// rejected the same way configuration file does.
func (tr *Trace) feedConfig(base config.FeedConfig) (config.FeedConfig, error) {
	if tr.Feed.Kind == 0 {
		return base, nil
	}
	data, err := yaml.Marshal(&tr.Feed)
	if err != nil {
		return base, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&base); err != nil {
		return base, fmt.Errorf("unable to decode feed overrides: %w", err)
	}
	if err := gencfg.Validate(&base); err != nil {
		return base, fmt.Errorf("bad feed overrides: %w", err)
	}
	return base, nil
}

type item struct {
	id string
}

func (it item) ID() string {
	return it.id
}

type classedItem struct {
	item
	class common.PreloadClass
}

func (it classedItem) PreloadClass() common.PreloadClass {
	return it.class
}

func feedItems(specs []ItemSpec) []feed.Item {
	items := make([]feed.Item, 0, len(specs))
	for _, s := range specs {
		if s.Class != nil {
			items = append(items, classedItem{item: item{id: s.ID}, class: *s.Class})
			continue
		}
		items = append(items, item{id: s.ID})
	}
	return items
}
