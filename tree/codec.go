package tree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dgryski/go-farm"
	"github.com/shamaton/msgpack/v2"
)

const encodingVersion = 1

var ErrMalformed = errors.New("malformed tree encoding")

// encodedTree is the flattened preorder form of a tree: the value of every
// node and how many children it has.
type encodedTree[T comparable] struct {
	Version int   `msgpack:"v"`
	Values  []T   `msgpack:"values"`
	Arity   []int `msgpack:"arity"`
}

func flatten[T comparable](root *Node[T]) encodedTree[T] {
	out := encodedTree[T]{Version: encodingVersion}
	Walk(root, func(n *Node[T], _ int) bool {
		arity := 0
		for _, c := range n.Children {
			if c != nil {
				arity++
			}
		}
		out.Values = append(out.Values, n.Value)
		out.Arity = append(out.Arity, arity)
		return true
	})
	return out
}

// Encode writes root to w as msgpack.
func Encode[T comparable](w io.Writer, root *Node[T]) error {
	return msgpack.MarshalWrite(w, flatten(root))
}

// Decode reads a tree written by Encode. An empty encoding yields a nil root.
func Decode[T comparable](r io.Reader) (*Node[T], error) {
	var enc encodedTree[T]
	if err := msgpack.UnmarshalRead(r, &enc); err != nil {
		return nil, fmt.Errorf("decoding tree: %w", err)
	}
	if enc.Version != encodingVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, enc.Version)
	}
	return unflatten(enc)
}

func unflatten[T comparable](enc encodedTree[T]) (*Node[T], error) {
	if len(enc.Values) != len(enc.Arity) {
		return nil, fmt.Errorf("%w: %d values but %d arities", ErrMalformed, len(enc.Values), len(enc.Arity))
	}
	if len(enc.Values) == 0 {
		return nil, nil
	}
	type pending struct {
		node      *Node[T]
		remaining int
	}
	for i, a := range enc.Arity {
		if a < 0 {
			return nil, fmt.Errorf("%w: negative arity at node %d", ErrMalformed, i)
		}
	}
	root := &Node[T]{Value: enc.Values[0]}
	stack := []pending{{root, enc.Arity[0]}}
	for i := 1; i < len(enc.Values); i++ {
		for len(stack) > 0 && stack[len(stack)-1].remaining == 0 {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			return nil, fmt.Errorf("%w: trailing node %d", ErrMalformed, i)
		}
		parent := &stack[len(stack)-1]
		parent.remaining--
		n := &Node[T]{Value: enc.Values[i]}
		parent.node.Children = append(parent.node.Children, n)
		stack = append(stack, pending{n, enc.Arity[i]})
	}
	for _, p := range stack {
		if p.remaining != 0 {
			return nil, fmt.Errorf("%w: truncated", ErrMalformed)
		}
	}
	return root, nil
}

// Fingerprint is a 64-bit farmhash of the tree's encoding. Two trees with the
// same shape and values share a fingerprint.
func Fingerprint[T comparable](root *Node[T]) (uint64, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, root); err != nil {
		return 0, err
	}
	return farm.Hash64(buf.Bytes()), nil
}

func WriteFile[T comparable](path string, root *Node[T]) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, root); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ReadFile[T comparable](path string) (*Node[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode[T](f)
}
