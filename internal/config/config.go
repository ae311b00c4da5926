package config

import (
	"fmt"
	"strings"

	"conhash/ring"
)

// NodeSpec describes a physical node placed on the ring.
type NodeSpec struct {
	ID   string
	Addr string
}

// Config holds ring and placement settings.
type Config struct {
	RingSize        uint64
	InitialCapacity int
	MaxCapacity     int // 0 means no limit
	VNodes          int // synthetic hashes placed per node
	Nodes           []NodeSpec
}

// Default returns a config with a 2^32 ring and 64 vnodes per node.
func Default() Config {
	return Config{
		RingSize:        1 << 32,
		InitialCapacity: ring.DefaultInitialCapacity,
		VNodes:          64,
	}
}

// ParseNodes parses a comma-separated list of nodes in the format:
// "id1=addr1,id2=addr2,id3=addr3"
func ParseNodes(nodesStr string) ([]NodeSpec, error) {
	if nodesStr == "" {
		return []NodeSpec{}, nil
	}

	parts := strings.Split(nodesStr, ",")
	nodes := make([]NodeSpec, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid node format: %s (expected id=addr)", part)
		}

		id := strings.TrimSpace(kv[0])
		addr := strings.TrimSpace(kv[1])

		if id == "" || addr == "" {
			return nil, fmt.Errorf("node ID and address cannot be empty: %s", part)
		}

		nodes = append(nodes, NodeSpec{
			ID:   id,
			Addr: addr,
		})
	}

	return nodes, nil
}

// Validate checks the config. Errors wrap ring.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	if c.RingSize == 0 {
		return fmt.Errorf("%w: ring size must be positive", ring.ErrInvalidConfiguration)
	}
	if c.InitialCapacity <= 0 {
		return fmt.Errorf("%w: initial capacity %d must be positive",
			ring.ErrInvalidConfiguration, c.InitialCapacity)
	}
	if c.MaxCapacity < 0 {
		return fmt.Errorf("%w: max capacity %d must not be negative",
			ring.ErrInvalidConfiguration, c.MaxCapacity)
	}
	if c.VNodes <= 0 {
		return fmt.Errorf("%w: vnodes %d must be positive", ring.ErrInvalidConfiguration, c.VNodes)
	}

	seen := make(map[string]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		if seen[n.ID] {
			return fmt.Errorf("%w: duplicate node ID %s", ring.ErrInvalidConfiguration, n.ID)
		}
		seen[n.ID] = true
	}
	return nil
}

// RingOptions converts the config into options for ring.New.
func (c *Config) RingOptions() []ring.Option {
	opts := []ring.Option{
		ring.WithInitialCapacity(c.InitialCapacity),
	}
	if c.MaxCapacity > 0 {
		opts = append(opts, ring.WithMaxCapacity(c.MaxCapacity))
	}
	return opts
}
