package config

import (
	"errors"
	"testing"

	"conhash/ring"
)

func TestParseNodes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []NodeSpec
		wantErr bool
	}{
		{
			name:  "empty string",
			input: "",
			want:  []NodeSpec{},
		},
		{
			name:  "single node",
			input: "n1=127.0.0.1:50051",
			want: []NodeSpec{
				{ID: "n1", Addr: "127.0.0.1:50051"},
			},
		},
		{
			name:  "multiple nodes",
			input: "n1=127.0.0.1:50051,n2=127.0.0.1:50052,n3=127.0.0.1:50053",
			want: []NodeSpec{
				{ID: "n1", Addr: "127.0.0.1:50051"},
				{ID: "n2", Addr: "127.0.0.1:50052"},
				{ID: "n3", Addr: "127.0.0.1:50053"},
			},
		},
		{
			name:  "with spaces and empty entries",
			input: "n1 = 127.0.0.1:50051 , , n2 = 127.0.0.1:50052",
			want: []NodeSpec{
				{ID: "n1", Addr: "127.0.0.1:50051"},
				{ID: "n2", Addr: "127.0.0.1:50052"},
			},
		},
		{
			name:    "invalid format - no equals",
			input:   "n1:127.0.0.1:50051",
			wantErr: true,
		},
		{
			name:    "invalid format - empty ID",
			input:   "=127.0.0.1:50051",
			wantErr: true,
		},
		{
			name:    "invalid format - empty addr",
			input:   "n1=",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNodes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseNodes() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if len(got) != len(tt.want) {
					t.Errorf("ParseNodes() length = %d, want %d", len(got), len(tt.want))
					return
				}
				for i := range got {
					if got[i] != tt.want[i] {
						t.Errorf("ParseNodes()[%d] = %v, want %v", i, got[i], tt.want[i])
					}
				}
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Default()
	valid.Nodes = []NodeSpec{{ID: "n1", Addr: "a"}, {ID: "n2", Addr: "b"}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected default config to be valid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero ring size", func(c *Config) { c.RingSize = 0 }},
		{"zero initial capacity", func(c *Config) { c.InitialCapacity = 0 }},
		{"zero vnodes", func(c *Config) { c.VNodes = 0 }},
		{"negative max capacity", func(c *Config) { c.MaxCapacity = -1 }},
		{"duplicate node", func(c *Config) {
			c.Nodes = append(c.Nodes, NodeSpec{ID: "n1", Addr: "c"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			cfg.Nodes = append([]NodeSpec(nil), valid.Nodes...)
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ring.ErrInvalidConfiguration) {
				t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestConfig_RingOptions(t *testing.T) {
	cfg := Default()
	cfg.RingSize = 128
	cfg.InitialCapacity = 3

	r, err := ring.New(cfg.RingSize, cfg.RingOptions()...)
	if err != nil {
		t.Fatalf("ring.New: %v", err)
	}
	if err := r.Insert(1); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if r.Cap() != 3 {
		t.Errorf("Expected first allocation of 3, got %d", r.Cap())
	}
}

func TestConfig_RingOptionsMaxCapacity(t *testing.T) {
	cfg := Default()
	cfg.RingSize = 128
	cfg.InitialCapacity = 2
	cfg.MaxCapacity = 2

	r, err := ring.New(cfg.RingSize, cfg.RingOptions()...)
	if err != nil {
		t.Fatalf("ring.New: %v", err)
	}
	for _, h := range []uint64{1, 2} {
		if err := r.Insert(h); err != nil {
			t.Fatalf("Insert(%d): %v", h, err)
		}
	}
	if err := r.Insert(3); !errors.Is(err, ring.ErrAllocation) {
		t.Errorf("Expected ErrAllocation past the max capacity, got %v", err)
	}
	if r.Len() != 2 {
		t.Errorf("Expected 2 nodes, got %d", r.Len())
	}
}
