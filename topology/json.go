// File: topology/json.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Topology JSON load/save (spec.md §6): blocks constructed by plugin path
// plus constructor args, post-construction calls, connections, named
// thread pools, and global variables. Grounded on facade/hioload.go's
// single Config struct driving construction, generalized to JSON per
// spec.md's documented shape.
package topology

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hioload-flow/flowcore/actor"
	"github.com/hioload-flow/flowcore/block"
	"github.com/hioload-flow/flowcore/flowerr"
	"github.com/hioload-flow/flowcore/internal/sched"
	"github.com/hioload-flow/flowcore/port"
)

// BlockSpec describes one block entry in a topology document.
type BlockSpec struct {
	ID    string  `json:"id"`
	Path  string  `json:"path"`
	Args  []any   `json:"args"`
	Calls [][]any `json:"calls"`
}

// ThreadPoolSpec mirrors sched.Args in JSON form (spec.md §6
// "thread_pools":{name: ThreadPoolArgs}).
type ThreadPoolSpec struct {
	NumThreads   int    `json:"num_threads"`
	Priority     int    `json:"priority"`
	AffinityMode string `json:"affinity_mode"`
	AffinityList []int  `json:"affinity_list"`
	YieldMode    string `json:"yield_mode"`
}

// ToArgs converts the JSON form into sched.Args.
func (s ThreadPoolSpec) ToArgs() sched.Args {
	args := sched.Args{
		NumThreads:   s.NumThreads,
		Priority:     sched.Priority(s.Priority),
		AffinityList: s.AffinityList,
	}
	switch s.AffinityMode {
	case "numa":
		args.AffinityMode = sched.AffinityNUMA
	case "cpu":
		args.AffinityMode = sched.AffinityCPU
	default:
		args.AffinityMode = sched.AffinityAll
	}
	switch s.YieldMode {
	case "hybrid":
		args.YieldMode = sched.YieldHybrid
	case "spin":
		args.YieldMode = sched.YieldSpin
	default:
		args.YieldMode = sched.YieldCond
	}
	return args
}

// Document is the top-level shape loaded/saved by LoadJSON/SaveJSON,
// matching spec.md §6's Topology JSON exactly.
type Document struct {
	Blocks          []BlockSpec               `json:"blocks"`
	Connections     [][4]string               `json:"connections"`
	ThreadPools     map[string]ThreadPoolSpec  `json:"thread_pools"`
	GlobalVariables map[string]any             `json:"global_variables"`
}

// LoadJSON decodes a topology Document, wrapping decode failures as a
// ConfigurationError per spec.md §7.
func LoadJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, flowerr.Configuration(fmt.Sprintf("topology: malformed json: %v", err))
	}
	return &doc, nil
}

// SaveJSON encodes doc in the same shape LoadJSON accepts.
func SaveJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// BlockFactory constructs a block.Block plus the concrete port objects it
// owns from a BlockSpec — normally backed by a registry.PluginRegistry
// factory lookup keyed on spec.Path. Topology stays decoupled from the
// plugin-path/registry machinery (spec.md §6's "narrow collaborator
// interfaces only").
type BlockFactory func(spec BlockSpec) (blk block.Block, inputs []*port.InputPort, outputs []*port.OutputPort, err error)

// ApplyDocument constructs every block in doc via factory, registers it,
// issues its post-construction Calls through OpaqueCall, wires every
// Connection, and Commits — the one-shot equivalent of PothosUtil
// --run-topology=<json> (spec.md §6).
func (t *Topology) ApplyDocument(doc *Document, factory BlockFactory, maxTimeoutNs int64) error {
	for _, bs := range doc.Blocks {
		blk, inputs, outputs, err := factory(bs)
		if err != nil {
			return flowerr.ModuleLoad(fmt.Sprintf("topology: loading block %q (%s): %v", bs.ID, bs.Path, err))
		}
		a := actor.New(blk, inputs, outputs, maxTimeoutNs)
		if err := t.AddBlock(bs.ID, a); err != nil {
			return err
		}
		for _, call := range bs.Calls {
			if len(call) == 0 {
				continue
			}
			name, ok := call[0].(string)
			if !ok {
				return flowerr.Configuration(fmt.Sprintf("topology: block %q call entry missing method name", bs.ID))
			}
			if _, err := a.OpaqueCall(name, call[1:]...); err != nil {
				return flowerr.Configuration(fmt.Sprintf("topology: call %s.%s: %v", bs.ID, name, err))
			}
		}
	}

	for _, c := range doc.Connections {
		if err := t.Connect(c[0], c[1], c[2], c[3]); err != nil {
			return err
		}
	}

	return t.Commit()
}
