// Package config defines configuration for the hibpdl CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (HIBPDL_ prefix)
//   - YAML configuration file
//
// Prefix values (first/last/step) are hexadecimal everywhere, matching
// how the keyspace is addressed:
//
//	output: hash+count.bin
//	first_prefix: "0000"
//	last_prefix: "10000"
//	prefix_step: "0040"
//	workers: 16
//	retry:
//	  backoff: 250ms
//	  max_backoff: 5s
package config
