// Package config holds ring sizing and node placement settings and parses
// node lists given on the command line.
package config
