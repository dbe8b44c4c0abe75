// Package target identifies likeable content: a closed set of kinds and the
// (kind, id) pair used as the engagement key.
package target

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is one of the three likeable content kinds.
type Kind string

const (
	Post    Kind = "post"
	Comment Kind = "comment"
	Reply   Kind = "reply"
)

// Kinds lists every kind in a stable order.
var Kinds = []Kind{Post, Comment, Reply}

// ParseKind accepts the wire form case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Post, Comment, Reply:
		return k, nil
	default:
		return "", fmt.Errorf("unknown target kind %q", s)
	}
}

func (k Kind) Valid() bool {
	switch k {
	case Post, Comment, Reply:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

// Target is a single likeable node.
type Target struct {
	Kind Kind  `json:"kind"`
	ID   int64 `json:"id"`
}

func Of(k Kind, id int64) Target { return Target{Kind: k, ID: id} }

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.Kind, t.ID)
}

// Parse is the inverse of String.
func Parse(s string) (Target, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok {
		return Target{}, fmt.Errorf("malformed target %q", s)
	}
	k, err := ParseKind(kind)
	if err != nil {
		return Target{}, err
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return Target{}, fmt.Errorf("malformed target id %q: %w", s, err)
	}
	return Target{Kind: k, ID: n}, nil
}
