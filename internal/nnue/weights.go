package nnue

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

var (
	ErrSizeMismatch      = errors.New("size mismatch")
	ErrCorruptCheckpoint = errors.New("corrupt checkpoint")
)

// Write emits the network file read by the engine's evaluator. The file has no
// header and holds little-endian IEEE-754 float32 values in the order W1 (one row
// of Hidden1 values per input), b1, W2 (one row of Hidden2 values per hidden1
// neuron), b2, W3, bOut. Its length is exactly Config.ByteSize().
//
// Changing the order or count of the fields requires a version marker.
func Write(w io.Writer, n *Network) error {
	var buf [4]byte
	var err error
	n.walk(func(data []float32) {
		if err != nil {
			return
		}
		for _, x := range data {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(x))
			if _, err = w.Write(buf[:]); err != nil {
				return
			}
		}
	})
	return err
}

func Serialize(n *Network) []byte {
	var buf bytes.Buffer
	buf.Grow(n.Config.ByteSize())
	// bytes.Buffer writes do not fail
	_ = Write(&buf, n)
	return buf.Bytes()
}

// Deserialize reads a network of the given architecture. Any length other than
// cfg.ByteSize() is rejected.
func Deserialize(cfg Config, data []byte) (*Network, error) {
	if len(data) != cfg.ByteSize() {
		return nil, fmt.Errorf("%w expected %v bytes, got %v",
			ErrSizeMismatch, cfg.ByteSize(), len(data))
	}
	var n = NewNetwork(cfg)
	var offset = 0
	n.walk(func(dst []float32) {
		for i := range dst {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
			offset += 4
		}
	})
	return n, nil
}

// SaveFile writes the network next to path and renames it into place, so readers
// never observe a partially written file.
func SaveFile(path string, n *Network) (err error) {
	var dir = filepath.Dir(path)
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	var tmpName = f.Name()
	var closed bool
	defer func() {
		if !closed {
			f.Close()
		}
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = f.Write(Serialize(n)); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	closed = true
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// LoadFile reads a checkpoint. A file of the wrong length is reported as
// ErrCorruptCheckpoint and nothing is loaded.
func LoadFile(cfg Config, path string) (*Network, error) {
	var data, err = os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	n, err := Deserialize(cfg, data)
	if err != nil {
		return nil, fmt.Errorf("%w %v: %w", ErrCorruptCheckpoint, path, err)
	}
	return n, nil
}
