// File: topology/ids.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package topology

import "github.com/google/uuid"

// NewID mints an opaque block id for callers that don't supply their own
// (topology JSON documents always supply an explicit "id" per block).
func NewID() string { return uuid.NewString() }
