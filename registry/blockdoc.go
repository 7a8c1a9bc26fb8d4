// File: registry/blockdoc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ParseBlockDoc reads a PothosDoc-marked comment block (spec.md §6) and
// emits one FactoryDoc per |factory directive it finds, the JSON-shaped
// struct external tooling (a block catalog browser) would consume.
// Grounded on examples throughout original_source (e.g.
// comms/digital/DifferentialDecoder.cpp's |category/|param/|default/
// |factory/|setter block) for the directive vocabulary and layout: one
// '|directive rest-of-line' per comment line, directives repeat freely,
// and a new |factory line starts a fresh FactoryDoc sharing the
// preceding category/keywords/alias/params.
package registry

import (
	"regexp"
	"strings"

	"github.com/hioload-flow/flowcore/flowerr"
)

// Param is one |param directive: a name, an optional bracketed label, and
// whatever free text followed on the same line plus any |default that
// trails it.
type Param struct {
	Name    string
	Label   string
	Text    string
	Default string
	Preview string
}

// FactoryDoc is the JSON-shaped object ParseBlockDoc emits per |factory
// directive discovered, per spec.md §6 ("The parser emits one JSON
// object per factory discovered").
type FactoryDoc struct {
	Title    string
	Category string
	Keywords []string
	Aliases  []string
	Params   []Param
	Factory  string
	Setters  []string
	Widgets  map[string]string
	Mode     string
}

var paramHeaderRe = regexp.MustCompile(`^([A-Za-z0-9_]+)(?:\[([^\]]*)\])?\s*(.*)$`)

// ParseBlockDoc scans src (a block's full source text) for PothosDoc
// comment blocks and returns one FactoryDoc per |factory directive
// encountered. A source file with no PothosDoc marker yields an empty,
// non-error result.
func ParseBlockDoc(src string) ([]FactoryDoc, error) {
	var docs []FactoryDoc
	var cur *FactoryDoc
	var title string
	var category string
	var keywords, aliases []string
	var params []Param
	var seenTitle bool

	flush := func() {
		if cur != nil {
			cur.Title = title
			cur.Category = category
			cur.Keywords = append([]string(nil), keywords...)
			cur.Aliases = append([]string(nil), aliases...)
			cur.Params = append([]Param(nil), params...)
			docs = append(docs, *cur)
			cur = nil
		}
	}

	lines := strings.Split(src, "\n")
	inBlock := false
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if !inBlock {
			if idx := strings.Index(line, "|PothosDoc"); idx >= 0 {
				inBlock = true
				title = strings.TrimSpace(line[idx+len("|PothosDoc"):])
				seenTitle = true
				category, keywords, aliases, params = "", nil, nil, nil
			}
			continue
		}
		if strings.Contains(line, "*/") {
			inBlock = false
			line = strings.TrimSpace(strings.SplitN(line, "*/", 2)[0])
		}
		line = stripCommentDecoration(line)
		if line == "" {
			continue
		}
		if line[0] != '|' {
			continue // free-form description text between directives
		}
		directive, rest := splitDirective(line)
		switch directive {
		case "category":
			category = rest
		case "keywords":
			keywords = append(keywords, splitFields(rest)...)
		case "alias":
			aliases = append(aliases, rest)
		case "param":
			p, err := parseParam(rest)
			if err != nil {
				return nil, err
			}
			params = append(params, p)
		case "default":
			if len(params) > 0 {
				params[len(params)-1].Default = rest
			}
		case "preview":
			if len(params) > 0 {
				params[len(params)-1].Preview = rest
			}
		case "widget":
			if cur != nil {
				if cur.Widgets == nil {
					cur.Widgets = map[string]string{}
				}
				name, args := splitWidget(rest)
				cur.Widgets[name] = args
			}
		case "factory":
			flush()
			cur = &FactoryDoc{Factory: rest}
		case "setter":
			if cur != nil {
				cur.Setters = append(cur.Setters, rest)
			}
		case "mode":
			if cur != nil {
				cur.Mode = rest
			}
		}
	}
	flush()
	if !seenTitle {
		return nil, nil
	}
	return docs, nil
}

func stripCommentDecoration(line string) string {
	line = strings.TrimPrefix(line, "*")
	line = strings.TrimPrefix(line, "//")
	return strings.TrimSpace(line)
}

func splitDirective(line string) (directive, rest string) {
	body := strings.TrimPrefix(line, "|")
	sp := strings.IndexAny(body, " \t")
	if sp < 0 {
		return body, ""
	}
	return body[:sp], strings.TrimSpace(body[sp+1:])
}

func splitFields(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func splitWidget(s string) (name, args string) {
	if i := strings.IndexByte(s, '('); i >= 0 && strings.HasSuffix(s, ")") {
		return s[:i], s[i+1 : len(s)-1]
	}
	return s, ""
}

func parseParam(rest string) (Param, error) {
	m := paramHeaderRe.FindStringSubmatch(rest)
	if m == nil {
		return Param{}, flowerr.Configuration("malformed |param directive").WithContext("text", rest)
	}
	return Param{Name: m[1], Label: m[2], Text: m[3]}, nil
}
