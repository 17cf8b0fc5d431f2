// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import "encoding/binary"

// Indirect argument layouts read by DrawIndirect, DrawIndexedIndirect and
// DispatchIndirect. Bytes appends the little-endian encoding to write into
// an indirect buffer.

// DrawIndirectCommand is 16 bytes.
type DrawIndirectCommand struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

func (c DrawIndirectCommand) Bytes(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, c.VertexCount)
	dst = binary.LittleEndian.AppendUint32(dst, c.InstanceCount)
	dst = binary.LittleEndian.AppendUint32(dst, c.FirstVertex)
	return binary.LittleEndian.AppendUint32(dst, c.FirstInstance)
}

// DrawIndexedIndirectCommand is 20 bytes.
type DrawIndexedIndirectCommand struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}

func (c DrawIndexedIndirectCommand) Bytes(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, c.IndexCount)
	dst = binary.LittleEndian.AppendUint32(dst, c.InstanceCount)
	dst = binary.LittleEndian.AppendUint32(dst, c.FirstIndex)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(c.BaseVertex))
	return binary.LittleEndian.AppendUint32(dst, c.FirstInstance)
}

// DispatchIndirectCommand is 12 bytes.
type DispatchIndirectCommand struct {
	X, Y, Z uint32
}

func (c DispatchIndirectCommand) Bytes(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, c.X)
	dst = binary.LittleEndian.AppendUint32(dst, c.Y)
	return binary.LittleEndian.AppendUint32(dst, c.Z)
}
