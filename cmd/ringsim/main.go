package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/unixpickle/essentials"

	"conhash/internal/cache"
	"conhash/internal/config"
)

func main() {
	defaults := config.Default()

	ringSize := flag.Uint64("ring-size", defaults.RingSize, "Number of positions on the ring")
	initialCap := flag.Int("initial-capacity", defaults.InitialCapacity, "Capacity of the ring's first allocation")
	maxCap := flag.Int("max-capacity", 0, "Largest ring allocation allowed (0 = no limit)")
	vnodes := flag.Int("vnodes", defaults.VNodes, "Synthetic hashes placed per node")
	nodesStr := flag.String("nodes", "n1=127.0.0.1:7001,n2=127.0.0.1:7002,n3=127.0.0.1:7003",
		"Comma-separated list of nodes (id=addr)")
	numKeys := flag.Int("keys", 10000, "Number of synthetic keys to load")
	addStr := flag.String("add", "", "Node to add after loading (id=addr)")
	removeID := flag.String("remove", "", "Node ID to remove after loading")
	flag.Parse()

	nodes, err := config.ParseNodes(*nodesStr)
	essentials.Must(essentials.AddCtx("parse -nodes", err))

	cfg := config.Config{
		RingSize:        *ringSize,
		InitialCapacity: *initialCap,
		MaxCapacity:     *maxCap,
		VNodes:          *vnodes,
		Nodes:           nodes,
	}
	c, err := cache.New(cfg)
	essentials.Must(essentials.AddCtx("build cache", err))

	for i := 0; i < *numKeys; i++ {
		key := fmt.Sprintf("key-%d", i)
		if err := c.Put(key, []byte(key)); err != nil {
			log.Printf("[ringsim] Put %s failed: %v", key, err)
			os.Exit(1)
		}
	}
	log.Printf("[ringsim] Loaded %d keys onto %d nodes", *numKeys, len(c.Nodes()))
	printStats(c)

	if *addStr != "" {
		added, err := config.ParseNodes(*addStr)
		essentials.Must(essentials.AddCtx("parse -add", err))
		for _, n := range added {
			moved, err := c.AddNode(n)
			essentials.Must(essentials.AddCtx("add "+n.ID, err))
			fmt.Printf("added %s: %d keys moved (%.1f%%)\n", n.ID, moved, percent(moved, *numKeys))
		}
		printStats(c)
	}

	if *removeID != "" {
		moved, err := c.RemoveNode(*removeID)
		essentials.Must(essentials.AddCtx("remove "+*removeID, err))
		fmt.Printf("removed %s: %d keys moved (%.1f%%)\n", *removeID, moved, percent(moved, *numKeys))
		printStats(c)
	}
}

func printStats(c *cache.Cache) {
	stats := c.Stats()
	total := c.Len()
	for _, n := range c.Nodes() {
		fmt.Printf("%-12s %-22s %8d keys %6.1f%%\n", n.ID, n.Addr, stats[n.ID], percent(stats[n.ID], total))
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
