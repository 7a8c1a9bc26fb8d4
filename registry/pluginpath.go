// File: registry/pluginpath.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package registry implements the narrow external-collaborator
// interfaces spec.md §6 names for the plugin registry and block
// description markup: path syntax validation and PothosDoc comment
// parsing. Neither the plugin loader nor the factory/catalog storage
// itself is in scope (spec.md §1's explicit Non-goal); only the two
// pure parsing functions a caller needs to drive them are implemented
// here, grounded on the teacher's api/interfaces.go narrow-contract
// style (small free functions with no backing state).
package registry

import (
	"strings"

	"github.com/hioload-flow/flowcore/flowerr"
)

// ParsePluginPath validates and splits an absolute UNIX-like plugin path
// (spec.md §6: segments `[A-Za-z0-9_-]+`, no empty segments, case
// sensitive, root "/"). Returns the path's segments, or a
// ConfigurationError for a malformed path.
func ParsePluginPath(path string) ([]string, error) {
	if path == "" || path[0] != '/' {
		return nil, flowerr.Configuration("plugin path must be absolute").WithContext("path", path)
	}
	if path == "/" {
		return []string{}, nil
	}
	raw := strings.Split(path[1:], "/")
	segments := make([]string, 0, len(raw))
	for _, seg := range raw {
		if seg == "" {
			return nil, flowerr.Configuration("plugin path contains an empty segment").WithContext("path", path)
		}
		for _, r := range seg {
			if !isPathRune(r) {
				return nil, flowerr.Configuration("plugin path segment contains an invalid character").
					WithContext("path", path).WithContext("segment", seg)
			}
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func isPathRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	default:
		return false
	}
}
