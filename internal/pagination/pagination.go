// Package pagination translates next, previous and reset intents into cursor
// query variables. A State never mixes forward and backward pagination:
// either First and After are set, or Last and Before.
package pagination

import (
	"fmt"

	"github.com/openkcm/storefront-sync/internal/commerce"
	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

const DefaultPageSize = 10

type Action string

const (
	ActionReset    Action = "reset"
	ActionNext     Action = "next"
	ActionPrev     Action = "prev"
	ActionFilter   Action = "filter"
	ActionSortKey  Action = "sortKey"
	ActionOverride Action = "override"
)

// ParseAction parses an action name. The empty string is ActionReset.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case "":
		return ActionReset, nil
	case ActionReset, ActionNext, ActionPrev, ActionFilter, ActionSortKey, ActionOverride:
		return a, nil
	default:
		return "", fmt.Errorf("unknown pagination action %q: %w", s, serviceerr.ErrInvalidRequest)
	}
}

type State struct {
	PageSize int
	commerce.PageVariables
}

// New returns the first page state.
func New(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{PageSize: pageSize}.Reset()
}

func (s State) Reset() State {
	first := s.PageSize
	return State{PageSize: s.PageSize, PageVariables: commerce.PageVariables{First: &first}}
}

// Next moves to the page after cursor. Without a cursor there is no next
// page and the state falls back to the first page.
func (s State) Next(cursor string) State {
	if cursor == "" {
		return s.Reset()
	}
	first := s.PageSize
	return State{PageSize: s.PageSize, PageVariables: commerce.PageVariables{First: &first, After: &cursor}}
}

// Prev moves to the page before cursor, falling back to the first page
// without a cursor.
func (s State) Prev(cursor string) State {
	if cursor == "" {
		return s.Reset()
	}
	last := s.PageSize
	return State{PageSize: s.PageSize, PageVariables: commerce.PageVariables{Last: &last, Before: &cursor}}
}

// Step applies one of ActionNext, ActionPrev or ActionReset.
func (s State) Step(action Action, cursor string) (State, error) {
	switch action {
	case ActionNext:
		return s.Next(cursor), nil
	case ActionPrev:
		return s.Prev(cursor), nil
	case ActionReset, "":
		return s.Reset(), nil
	default:
		return s, fmt.Errorf("action %q does not apply to this list: %w", action, serviceerr.ErrInvalidRequest)
	}
}

// override validates client supplied page variables against the state
// invariant and returns the resulting state.
func (s State) override(v commerce.PageVariables) (State, error) {
	forward := v.First != nil || v.After != nil
	backward := v.Last != nil || v.Before != nil

	switch {
	case forward && backward:
		return s, fmt.Errorf("forward and backward page variables are mixed: %w", serviceerr.ErrInvalidRequest)
	case backward:
		if v.Before == nil || *v.Before == "" {
			return s, fmt.Errorf("last requires a before cursor: %w", serviceerr.ErrInvalidRequest)
		}
		size, err := s.size(v.Last)
		if err != nil {
			return s, err
		}
		return State{PageSize: s.PageSize, PageVariables: commerce.PageVariables{Last: &size, Before: v.Before}}, nil
	case forward:
		size, err := s.size(v.First)
		if err != nil {
			return s, err
		}
		after := v.After
		if after != nil && *after == "" {
			after = nil
		}
		return State{PageSize: s.PageSize, PageVariables: commerce.PageVariables{First: &size, After: after}}, nil
	default:
		return s.Reset(), nil
	}
}

func (s State) size(n *int) (int, error) {
	if n == nil {
		return s.PageSize, nil
	}
	if *n <= 0 {
		return 0, fmt.Errorf("page size %d out of range: %w", *n, serviceerr.ErrInvalidRequest)
	}
	return *n, nil
}

// Forward reports whether the state paginates forward.
func (s State) Forward() bool {
	return s.First != nil
}
