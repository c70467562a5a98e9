package attachment

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// SnapshotVersion is written into every snapshot. Readers do not branch on it.
const SnapshotVersion = 1

// ErrInvalidSnapshot is returned when snapshot bytes are not a JSON object.
var ErrInvalidSnapshot = errors.New("invalid button snapshot")

// Snapshot is the editor-internal JSON form of a node.
type Snapshot struct {
	Type       string `json:"type"`
	Version    int    `json:"version"`
	ButtonText string `json:"buttonText"`
	ButtonLink string `json:"buttonLink"`
}

// ExportSnapshot captures the current attributes of n.
func ExportSnapshot(n *Node) Snapshot {
	return Snapshot{
		Type:       Kind,
		Version:    SnapshotVersion,
		ButtonText: n.Label,
		ButtonLink: n.Target,
	}
}

// ImportSnapshot creates a new node from a decoded snapshot.
func ImportSnapshot(s Snapshot) *Node {
	return New(s.ButtonText, s.ButtonLink)
}

// MarshalSnapshot encodes the snapshot of n.
func MarshalSnapshot(n *Node) ([]byte, error) {
	data, err := json.Marshal(ExportSnapshot(n))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal button snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes snapshot bytes into a new node. Unknown fields and a
// missing version are tolerated; non-string attribute values are coerced.
func UnmarshalSnapshot(data []byte) (*Node, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidSnapshot)
	}

	value := gjson.ParseBytes(data)
	if !value.IsObject() {
		return nil, fmt.Errorf("%w: expected object, got %s", ErrInvalidSnapshot, value.Type)
	}

	if t := lastMember(value, "type"); t.Exists() && t.String() != Kind {
		return nil, fmt.Errorf("%w: unexpected type %q", ErrInvalidSnapshot, t.String())
	}

	return ImportSnapshot(Snapshot{
		Type:       Kind,
		Version:    int(value.Get("version").Int()),
		ButtonText: coerceString(lastMember(value, "buttonText")),
		ButtonLink: coerceString(lastMember(value, "buttonLink")),
	}), nil
}
