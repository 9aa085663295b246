package idgen

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/academy/backend/internal/domain/billing"
)

const manualPrefix = "manual"

// SnowflakeReferenceGenerator issues provider references for staff-posted
// payments. The snowflake part keeps references unique across instances as
// long as each instance runs with a distinct node id.
type SnowflakeReferenceGenerator struct {
	node *snowflake.Node
}

// NewSnowflakeReferenceGenerator creates a generator for node (0-1023)
func NewSnowflakeReferenceGenerator(node int64) (*SnowflakeReferenceGenerator, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node %d: %w", node, err)
	}
	return &SnowflakeReferenceGenerator{node: n}, nil
}

// NextReference returns manual-<unix-ms>-<snowflake>
func (g *SnowflakeReferenceGenerator) NextReference(now time.Time) string {
	return fmt.Sprintf("%s-%d-%s", manualPrefix, now.UnixMilli(), g.node.Generate().String())
}

var _ billing.ReferenceGenerator = (*SnowflakeReferenceGenerator)(nil)
