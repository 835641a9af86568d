package uid

import "github.com/bwmarrin/snowflake"

// Snowflake generates sortable numeric IDs. Node must be unique per
// running instance when the service is scaled horizontally.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a snowflake generator for the given node number.
func NewSnowflake(node int64) (*Snowflake, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: n}, nil
}

// Generate returns a new snowflake ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
