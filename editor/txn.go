package editor

import "fmt"

// Txn is the mutation scope of one update. It is only valid while the update
// function runs.
type Txn struct {
	editor *Editor
	dirty  map[string]bool
	closed bool
}

// Node returns the live block with the given key and marks it as changed.
func (tx *Txn) Node(key string) (Node, error) {
	if tx.closed {
		return nil, ErrReadOnly
	}
	i := tx.index(key)
	if i < 0 {
		return nil, fmt.Errorf("%w: key %q", ErrUnknownNode, key)
	}
	tx.dirty[key] = true
	return tx.editor.blocks[i], nil
}

// Blocks returns the live blocks in document order.
func (tx *Txn) Blocks() []Node {
	return append([]Node(nil), tx.editor.blocks...)
}

// Cursor returns the block holding the cursor.
func (tx *Txn) Cursor() (Node, bool) {
	i := tx.index(tx.editor.cursor)
	if i < 0 {
		return nil, false
	}
	return tx.editor.blocks[i], true
}

// SetCursor moves the cursor to a block.
func (tx *Txn) SetCursor(key string) error {
	if tx.closed {
		return ErrReadOnly
	}
	if tx.index(key) < 0 {
		return fmt.Errorf("%w: key %q", ErrUnknownNode, key)
	}
	tx.editor.cursor = key
	return nil
}

// Insert places n after the cursor block, or first when there is no cursor,
// and moves the cursor onto it.
func (tx *Txn) Insert(n Node) error {
	at := tx.index(tx.editor.cursor) + 1
	if err := tx.insertAt(at, n); err != nil {
		return err
	}
	tx.editor.cursor = n.Key()
	return nil
}

// InsertAfter places n directly after the block with the given key.
func (tx *Txn) InsertAfter(key string, n Node) error {
	i := tx.index(key)
	if i < 0 {
		return fmt.Errorf("%w: key %q", ErrUnknownNode, key)
	}
	return tx.insertAt(i+1, n)
}

// Next returns the block following key.
func (tx *Txn) Next(key string) (Node, bool) {
	i := tx.index(key)
	if i < 0 || i+1 >= len(tx.editor.blocks) {
		return nil, false
	}
	return tx.editor.blocks[i+1], true
}

// Remove deletes a block. The cursor moves to the previous block, if any.
func (tx *Txn) Remove(key string) error {
	if tx.closed {
		return ErrReadOnly
	}
	i := tx.index(key)
	if i < 0 {
		return fmt.Errorf("%w: key %q", ErrUnknownNode, key)
	}

	blocks := tx.editor.blocks
	tx.editor.blocks = append(blocks[:i:i], blocks[i+1:]...)
	delete(tx.dirty, key)

	if tx.editor.cursor == key {
		tx.editor.cursor = ""
		if i > 0 {
			tx.editor.cursor = tx.editor.blocks[i-1].Key()
		}
	}
	return nil
}

// Replace swaps the whole document for blocks and puts the cursor on the last one.
func (tx *Txn) Replace(blocks []Node) error {
	if tx.closed {
		return ErrReadOnly
	}
	for _, n := range blocks {
		if err := tx.prepare(n); err != nil {
			return err
		}
	}

	tx.editor.blocks = append([]Node(nil), blocks...)
	tx.editor.cursor = ""
	if len(blocks) > 0 {
		tx.editor.cursor = blocks[len(blocks)-1].Key()
	}
	return nil
}

func (tx *Txn) insertAt(i int, n Node) error {
	if tx.closed {
		return ErrReadOnly
	}
	if err := tx.prepare(n); err != nil {
		return err
	}
	if tx.index(n.Key()) >= 0 {
		return fmt.Errorf("node %q is already in the document", n.Key())
	}

	blocks := tx.editor.blocks
	blocks = append(blocks, nil)
	copy(blocks[i+1:], blocks[i:])
	blocks[i] = n
	tx.editor.blocks = blocks
	tx.dirty[n.Key()] = true
	return nil
}

func (tx *Txn) prepare(n Node) error {
	if !tx.editor.HasNode(n.Kind()) {
		return fmt.Errorf("%w: kind %q is not registered", ErrUnknownNode, n.Kind())
	}
	if n.Key() == "" {
		n.SetKey(tx.editor.newKey())
	}
	return nil
}

func (tx *Txn) index(key string) int {
	if key == "" {
		return -1
	}
	for i, n := range tx.editor.blocks {
		if n.Key() == key {
			return i
		}
	}
	return -1
}
