// Package config loads gecko client settings from YAML.
//
// Settings start from the embedded defaults; a file passed to Load only
// needs the keys it changes:
//
//	host: 192.168.1.20
//	io_timeout: 2s
//	regions:
//	  - kind: rw
//	    low: 0x10000000
//	    high: 0x50000000
//
// A regions list replaces the default address table wholesale.
package config
