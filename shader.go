// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/dusk/internal/cache"
	"github.com/gogpu/dusk/proc"
	"github.com/gogpu/naga"
)

// wgslCache holds SPIR-V compiled from recently used WGSL sources.
var wgslCache = cache.New[[sha256.Size]byte, []uint32](64)

// compileWGSL returns the SPIR-V words for source. The returned slice is
// shared and must not be modified.
func compileWGSL(source string) ([]uint32, error) {
	return wgslCache.GetOrCreate(sha256.Sum256([]byte(source)), func() ([]uint32, error) {
		code, err := naga.Compile(source)
		if err != nil {
			return nil, err
		}
		return SPIRVWords(code)
	})
}

// SPIRVWords converts little-endian SPIR-V bytes to 32-bit words.
func SPIRVWords(code []byte) ([]uint32, error) {
	if len(code)%4 != 0 {
		return nil, fmt.Errorf("spir-v length %d is not a multiple of 4: %w", len(code), ErrShaderSource)
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words, nil
}

// ShaderModule is a compiled shader.
type ShaderModule struct {
	h   handle[proc.ShaderModule]
	dev *Device
}

// CreateShaderModule creates a shader module from SPIR-V words.
func (d *Device) CreateShaderModule(label string, code []uint32) (*ShaderModule, error) {
	n, err := count("shader code", len(code))
	if err != nil {
		return nil, fmt.Errorf("create shader module: %w", err)
	}
	l := proc.LabelOf(label)
	raw := proc.ShaderModuleDescriptor{Label: l.Ptr(), CodeSize: n, Code: proc.First(code)}
	var h proc.ShaderModule
	d.lock(func(t *proc.Table, dev proc.Device) { h = t.DeviceCreateShaderModule(dev, &raw) })

	s := d.shared()
	m := &ShaderModule{}
	m.h.set(h, &s.n.shaderModule, s)
	m.dev = d.Clone()
	return m, nil
}

// CreateShaderModuleSPIRV creates a shader module from little-endian SPIR-V
// bytes.
func (d *Device) CreateShaderModuleSPIRV(label string, code []byte) (*ShaderModule, error) {
	words, err := SPIRVWords(code)
	if err != nil {
		return nil, fmt.Errorf("create shader module: %w", err)
	}
	return d.CreateShaderModule(label, words)
}

// CreateShaderModuleWGSL compiles WGSL source to SPIR-V and creates a
// shader module from it.
func (d *Device) CreateShaderModuleWGSL(label, source string) (*ShaderModule, error) {
	words, err := compileWGSL(source)
	if err != nil {
		return nil, fmt.Errorf("create shader module %q: %w: %w", label, ErrShaderSource, err)
	}
	return d.CreateShaderModule(label, words)
}

// Clone returns a new reference to the same module.
func (m *ShaderModule) Clone() *ShaderModule {
	c := &ShaderModule{}
	m.h.clone(&c.h)
	c.dev = m.dev.Clone()
	return c
}

// Release drops the reference. Further calls are no-ops.
func (m *ShaderModule) Release() {
	if m.h.release() {
		m.dev.Release()
	}
}

// Raw returns the native handle. Ownership stays with m.
func (m *ShaderModule) Raw() proc.ShaderModule { return m.h.get() }
