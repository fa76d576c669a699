// Package config loads application configuration from an optional YAML file
// and YOMIKATA_-prefixed environment variables, with env taking precedence.
package config
