// Package ui holds page-level interaction state shared by every module.
package ui

import (
	"net/url"
	"strings"
)

// DialogParam is the query parameter that carries the open dialogs,
// bottom first, e.g. ?dialog=detail:42&dialog=delete:42.
const DialogParam = "dialog"

// Common dialog kinds. Modules may define their own.
const (
	DialogCreate = "create"
	DialogEdit   = "edit"
	DialogDelete = "delete"
	DialogDetail = "detail"
)

// Dialog is one open modal: what it is and which record it is about.
type Dialog struct {
	Kind    string
	Payload string
}

func (d Dialog) String() string {
	if d.Payload == "" {
		return d.Kind
	}
	return d.Kind + ":" + d.Payload
}

// Dialogs is a stack of open modals. Only the top one is interactive; closing
// it reveals the one beneath. The zero value has nothing open.
type Dialogs struct {
	stack []Dialog
}

// ParseDialogs reads the stack from query values. Entries with an empty
// kind are ignored.
func ParseDialogs(q url.Values) Dialogs {
	var d Dialogs
	for _, raw := range q[DialogParam] {
		kind, payload, _ := strings.Cut(raw, ":")
		kind = strings.TrimSpace(kind)
		if kind == "" {
			continue
		}
		d.stack = append(d.stack, Dialog{Kind: kind, Payload: strings.TrimSpace(payload)})
	}
	return d
}

// Open pushes a dialog.
func (d Dialogs) Open(kind, payload string) Dialogs {
	stack := make([]Dialog, len(d.stack), len(d.stack)+1)
	copy(stack, d.stack)
	return Dialogs{stack: append(stack, Dialog{Kind: kind, Payload: payload})}
}

// Close pops the top dialog.
func (d Dialogs) Close() Dialogs {
	if len(d.stack) == 0 {
		return d
	}
	return Dialogs{stack: d.stack[:len(d.stack)-1 : len(d.stack)-1]}
}

// Top returns the interactive dialog.
func (d Dialogs) Top() (Dialog, bool) {
	if len(d.stack) == 0 {
		return Dialog{}, false
	}
	return d.stack[len(d.stack)-1], true
}

// IsOpen reports whether a dialog of kind is the top one.
func (d Dialogs) IsOpen(kind string) bool {
	top, ok := d.Top()
	return ok && top.Kind == kind
}

// Len returns the number of open dialogs.
func (d Dialogs) Len() int {
	return len(d.stack)
}

// Values encodes the stack for a link.
func (d Dialogs) Values() url.Values {
	q := url.Values{}
	for _, dl := range d.stack {
		q.Add(DialogParam, dl.String())
	}
	return q
}

// URL returns path with the stack as its query string.
func (d Dialogs) URL(path string) string {
	if len(d.stack) == 0 {
		return path
	}
	return path + "?" + d.Values().Encode()
}
