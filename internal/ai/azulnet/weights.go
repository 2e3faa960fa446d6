package azulnet

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Weight file format constants.
const (
	MagicNumber = 0x415a4e31 // "AZN1"
	Version     = 1
)

// FileHeader is the header of the weight file.
type FileHeader struct {
	Magic      uint32
	Version    uint32
	ObsSize    uint32
	HiddenSize uint32
	ActionSize uint32
}

// LoadWeights reads a network from a binary file.
// File format, all little-endian:
//   - Header: Magic, Version, ObsSize, HiddenSize, ActionSize (uint32 each)
//   - HiddenW: ObsSize * HiddenSize * float32
//   - HiddenB: HiddenSize * float32
//   - PolicyW: HiddenSize * ActionSize * float32
//   - PolicyB: ActionSize * float32
//   - ValueW:  HiddenSize * float32
//   - ValueB:  float32
func LoadWeights(filename string) (*Network, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open weights file: %w", err)
	}
	defer f.Close()

	var header FileHeader
	if err := binary.Read(f, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if header.Magic != MagicNumber {
		return nil, fmt.Errorf("invalid magic number: expected %x, got %x", MagicNumber, header.Magic)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("unsupported version: expected %d, got %d", Version, header.Version)
	}
	if header.ObsSize == 0 || header.HiddenSize == 0 || header.ActionSize == 0 {
		return nil, fmt.Errorf("degenerate network shape %dx%dx%d",
			header.ObsSize, header.HiddenSize, header.ActionSize)
	}

	n := New(int(header.ObsSize), int(header.HiddenSize), int(header.ActionSize))
	for _, chunk := range [][]float32{n.HiddenW, n.HiddenB, n.PolicyW, n.PolicyB, n.ValueW} {
		if err := binary.Read(f, binary.LittleEndian, chunk); err != nil {
			return nil, fmt.Errorf("failed to read weights: %w", err)
		}
	}
	if err := binary.Read(f, binary.LittleEndian, &n.ValueB); err != nil {
		return nil, fmt.Errorf("failed to read value bias: %w", err)
	}
	return n, nil
}

// SaveWeights writes the network in the LoadWeights format.
func (n *Network) SaveWeights(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create weights file: %w", err)
	}
	defer f.Close()

	header := FileHeader{
		Magic:      MagicNumber,
		Version:    Version,
		ObsSize:    uint32(n.ObsSize),
		HiddenSize: uint32(n.HiddenSize),
		ActionSize: uint32(n.ActionSize),
	}
	if err := binary.Write(f, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, chunk := range [][]float32{n.HiddenW, n.HiddenB, n.PolicyW, n.PolicyB, n.ValueW} {
		if err := binary.Write(f, binary.LittleEndian, chunk); err != nil {
			return fmt.Errorf("failed to write weights: %w", err)
		}
	}
	if err := binary.Write(f, binary.LittleEndian, n.ValueB); err != nil {
		return fmt.Errorf("failed to write value bias: %w", err)
	}
	return nil
}
