// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"errors"
	"slices"
	"testing"
)

const computeWGSL = `
@group(0) @binding(0) var<storage, read_write> data: array<u32>;

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    data[id.x] = data[id.x] * 2u;
}
`

func TestSPIRVWords(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    []uint32
		wantErr bool
	}{
		{"empty", nil, []uint32{}, false},
		{"magic", []byte{0x03, 0x02, 0x23, 0x07}, []uint32{0x07230203}, false},
		{"two words", []byte{1, 0, 0, 0, 0, 0, 0, 0x80}, []uint32{1, 0x80000000}, false},
		{"short", []byte{1, 2, 3}, nil, true},
		{"ragged", []byte{1, 2, 3, 4, 5}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SPIRVWords(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrShaderSource) {
					t.Errorf("SPIRVWords() error = %v, want ErrShaderSource", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SPIRVWords() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("SPIRVWords() = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestBadSPIRVMakesNoNativeCall(t *testing.T) {
	e := newEnv(t)
	e.rec.Reset()

	_, err := e.dev.CreateShaderModuleSPIRV("bad", []byte{3, 2, 0x23, 7, 0})
	if !errors.Is(err, ErrShaderSource) {
		t.Fatalf("CreateShaderModuleSPIRV() error = %v, want ErrShaderSource", err)
	}
	if got := e.rec.Calls("DeviceCreateShaderModule"); got != 0 {
		t.Errorf("DeviceCreateShaderModule calls = %d, want 0", got)
	}
}

func TestCreateShaderModuleSPIRV(t *testing.T) {
	e := newEnv(t)
	code := make([]byte, 0, len(spirvStub)*4)
	for _, w := range spirvStub {
		code = append(code, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	mod, err := e.dev.CreateShaderModuleSPIRV("stub", code)
	if err != nil {
		t.Fatalf("CreateShaderModuleSPIRV() error = %v", err)
	}
	c := mod.Clone()
	mod.Release()
	c.Release()
	e.wantNoErrors(t)
}

func TestCreateShaderModuleWGSL(t *testing.T) {
	e := newEnv(t)
	mod, err := e.dev.CreateShaderModuleWGSL("double", computeWGSL)
	if err != nil {
		t.Fatalf("CreateShaderModuleWGSL() error = %v", err)
	}
	defer mod.Release()
	e.wantNoErrors(t)

	_, err = e.dev.CreateShaderModuleWGSL("broken", "fn main( {")
	if !errors.Is(err, ErrShaderSource) {
		t.Errorf("CreateShaderModuleWGSL() error = %v, want ErrShaderSource", err)
	}
}

func TestCompileWGSLIsCached(t *testing.T) {
	first, err := compileWGSL(computeWGSL)
	if err != nil {
		t.Fatalf("compileWGSL() error = %v", err)
	}
	hits := wgslCache.Stats().Hits
	second, err := compileWGSL(computeWGSL)
	if err != nil {
		t.Fatalf("compileWGSL() error = %v", err)
	}
	if wgslCache.Stats().Hits != hits+1 {
		t.Error("second compile missed the cache")
	}
	if &first[0] != &second[0] {
		t.Error("cached compile returned different code")
	}
}
