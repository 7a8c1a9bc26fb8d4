package registry_test

import (
	"testing"

	"github.com/hioload-flow/flowcore/registry"
)

func TestParsePluginPathValid(t *testing.T) {
	segs, err := registry.ParsePluginPath("/comms/differential_decoder")
	if err != nil {
		t.Fatalf("ParsePluginPath: %v", err)
	}
	if len(segs) != 2 || segs[0] != "comms" || segs[1] != "differential_decoder" {
		t.Fatalf("unexpected segments: %v", segs)
	}
}

func TestParsePluginPathRoot(t *testing.T) {
	segs, err := registry.ParsePluginPath("/")
	if err != nil {
		t.Fatalf("ParsePluginPath: %v", err)
	}
	if len(segs) != 0 {
		t.Fatalf("expected no segments for root, got %v", segs)
	}
}

func TestParsePluginPathRejectsMalformed(t *testing.T) {
	cases := []string{"", "relative/path", "/a//b", "/a/b$c"}
	for _, c := range cases {
		if _, err := registry.ParsePluginPath(c); err == nil {
			t.Fatalf("expected error for %q", c)
		}
	}
}

const differentialDecoderDoc = `
// Copyright (c) 2015-2015 Rinat Zakirov
// SPDX-License-Identifier: BSL-1.0

/***********************************************************************
 * |PothosDoc Differential Decoder
 *
 * Implements the decoding part of differential coding.
 *
 * |category /Digital
 * |alias /blocks/differential_decoder
 *
 * |param symbols Number of possible symbols encoded in a byte.
 * |default 2
 *
 * |factory /comms/differential_decoder()
 * |setter setSymbols(symbols)
 **********************************************************************/
class DifferentialDecoder {};
`

func TestParseBlockDocExtractsFactory(t *testing.T) {
	docs, err := registry.ParseBlockDoc(differentialDecoderDoc)
	if err != nil {
		t.Fatalf("ParseBlockDoc: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 factory doc, got %d: %+v", len(docs), docs)
	}
	d := docs[0]
	if d.Title != "Differential Decoder" {
		t.Fatalf("unexpected title: %q", d.Title)
	}
	if d.Category != "/Digital" {
		t.Fatalf("unexpected category: %q", d.Category)
	}
	if len(d.Aliases) != 1 || d.Aliases[0] != "/blocks/differential_decoder" {
		t.Fatalf("unexpected aliases: %v", d.Aliases)
	}
	if len(d.Params) != 1 || d.Params[0].Name != "symbols" || d.Params[0].Default != "2" {
		t.Fatalf("unexpected params: %+v", d.Params)
	}
	if d.Factory != "/comms/differential_decoder()" {
		t.Fatalf("unexpected factory: %q", d.Factory)
	}
	if len(d.Setters) != 1 || d.Setters[0] != "setSymbols(symbols)" {
		t.Fatalf("unexpected setters: %v", d.Setters)
	}
}

func TestParseBlockDocNoMarkerYieldsEmpty(t *testing.T) {
	docs, err := registry.ParseBlockDoc("// just a regular comment\nfunc foo() {}\n")
	if err != nil {
		t.Fatalf("ParseBlockDoc: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected no docs, got %+v", docs)
	}
}
