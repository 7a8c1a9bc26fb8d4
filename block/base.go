// File: block/base.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Base is an embeddable helper for Block implementations that need no
// activation bracket, registered calls, or signal ports — the common case
// for small synthetic test blocks. Concrete blocks embed Base and override
// Work (and InputPortInfo/OutputPortInfo).
package block

// Base supplies no-op defaults for every Block method except Work, which
// embedding types must still provide.
type Base struct {
	BlockName string
}

// Name returns the configured block name.
func (b *Base) Name() string { return b.BlockName }

// InputPortInfo returns no ports by default.
func (b *Base) InputPortInfo() []PortInfo { return nil }

// OutputPortInfo returns no ports by default.
func (b *Base) OutputPortInfo() []PortInfo { return nil }

// OpaqueCallMethod reports an unknown-call error by default.
func (b *Base) OpaqueCallMethod(name string, args ...any) (any, error) {
	return nil, unknownCallError{name: name, block: b.BlockName}
}

// Activate is a no-op by default.
func (b *Base) Activate() error { return nil }

// Deactivate is a no-op by default.
func (b *Base) Deactivate() error { return nil }

type unknownCallError struct {
	name  string
	block string
}

func (e unknownCallError) Error() string {
	return "block " + e.block + ": no registered call named " + e.name
}
