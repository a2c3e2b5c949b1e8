package router

import (
	"fmt"
	"regexp"
	"strings"
)

type nodeTyp uint8

const (
	ntStatic   nodeTyp = iota // /home
	ntRegexp                  // /{id:[0-9]+}
	ntParam                   // /{user}
	ntCatchAll                // /api/v1/*
)

// node is one path segment of the routing tree.
type node struct {
	typ nodeTyp

	// segment text for static nodes, regexp source for regexp nodes
	segment string
	rex     *regexp.Regexp

	static   map[string]*node
	dynamic  []*node // regexp nodes first, then the plain param node
	catchAll *node

	endpoints map[methodTyp]*Route
}

type segmentSpec struct {
	typ   nodeTyp
	text  string
	param string
	rex   *regexp.Regexp
}

// parsePattern splits a pattern into segments and the ordered param keys.
func parsePattern(pattern string) ([]segmentSpec, []string, error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, nil, fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern)
	}

	parts := splitPath(pattern)
	segs := make([]segmentSpec, 0, len(parts))
	var keys []string
	seen := make(map[string]bool)

	for i, part := range parts {
		switch {
		case part == "*":
			if i != len(parts)-1 {
				return nil, nil, fmt.Errorf("%w: '%s'", ErrWildcardPosition, pattern)
			}
			segs = append(segs, segmentSpec{typ: ntCatchAll, param: "*"})
			keys = append(keys, "*")

		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			name, expr, hasRex := strings.Cut(part[1:len(part)-1], ":")
			if name == "" {
				return nil, nil, fmt.Errorf("%w: empty param name in '%s'", ErrInvalidPattern, pattern)
			}
			if seen[name] {
				return nil, nil, fmt.Errorf("%w: '%s' in '%s'", ErrDuplicateParam, name, pattern)
			}
			seen[name] = true
			keys = append(keys, name)

			if !hasRex {
				segs = append(segs, segmentSpec{typ: ntParam, param: name})
				continue
			}
			if !strings.HasPrefix(expr, "^") {
				expr = "^" + expr
			}
			if !strings.HasSuffix(expr, "$") {
				expr += "$"
			}
			rex, err := regexp.Compile(expr)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: '%s': %w", ErrInvalidRegexp, expr, err)
			}
			segs = append(segs, segmentSpec{typ: ntRegexp, text: expr, param: name, rex: rex})

		default:
			if strings.ContainsAny(part, "{}*") {
				return nil, nil, fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern)
			}
			segs = append(segs, segmentSpec{typ: ntStatic, text: part})
		}
	}
	return segs, keys, nil
}

// splitPath returns the path segments; "/" has none.
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func (n *node) child(seg segmentSpec) *node {
	switch seg.typ {
	case ntStatic:
		if n.static == nil {
			n.static = make(map[string]*node)
		}
		c, ok := n.static[seg.text]
		if !ok {
			c = &node{typ: ntStatic, segment: seg.text}
			n.static[seg.text] = c
		}
		return c

	case ntCatchAll:
		if n.catchAll == nil {
			n.catchAll = &node{typ: ntCatchAll}
		}
		return n.catchAll
	}

	for _, c := range n.dynamic {
		if c.typ == seg.typ && c.segment == seg.text {
			return c
		}
	}
	c := &node{typ: seg.typ, segment: seg.text, rex: seg.rex}

	// regexp nodes are tried before the plain param node
	if seg.typ == ntRegexp {
		idx := 0
		for idx < len(n.dynamic) && n.dynamic[idx].typ == ntRegexp {
			idx++
		}
		n.dynamic = append(n.dynamic[:idx], append([]*node{c}, n.dynamic[idx:]...)...)
	} else {
		n.dynamic = append(n.dynamic, c)
	}
	return c
}

func (n *node) insert(segs []segmentSpec) *node {
	cur := n
	for _, seg := range segs {
		cur = cur.child(seg)
	}
	if cur.endpoints == nil {
		cur.endpoints = make(map[methodTyp]*Route)
	}
	return cur
}

// find resolves segments to a route for method, collecting param values in
// order. Static children win over dynamic ones, dynamic over catch-all.
func (n *node) find(method methodTyp, segs []string, values []string) (*Route, []string) {
	if len(segs) == 0 {
		if rt := n.endpoints[method]; rt != nil {
			return rt, values
		}
		// a catch-all also matches an empty remainder
		if n.catchAll != nil {
			if rt := n.catchAll.endpoints[method]; rt != nil {
				return rt, append(values, "")
			}
		}
		return nil, values
	}

	seg := segs[0]

	if c, ok := n.static[seg]; ok {
		if rt, vals := c.find(method, segs[1:], values); rt != nil {
			return rt, vals
		}
	}

	if seg != "" {
		for _, c := range n.dynamic {
			if c.rex != nil && !c.rex.MatchString(seg) {
				continue
			}
			if rt, vals := c.find(method, segs[1:], append(values, seg)); rt != nil {
				return rt, vals
			}
		}
	}

	if n.catchAll != nil {
		if rt := n.catchAll.endpoints[method]; rt != nil {
			return rt, append(values, strings.Join(segs, "/"))
		}
	}
	return nil, values
}
