package hierarchy

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON encodes the tree rooted at n as indented JSON.
func WriteJSON(w io.Writer, n *Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(n)
}

// ReadJSON decodes a tree written by [WriteJSON].
func ReadJSON(r io.Reader) (*Node, error) {
	var n Node
	if err := json.NewDecoder(r).Decode(&n); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	return &n, nil
}

// Marshal returns the compact JSON encoding of the tree.
func Marshal(n *Node) ([]byte, error) {
	return json.Marshal(n)
}
