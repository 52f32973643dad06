// Package config provides application configuration loaded from environment
// variables (SHOPLENS_ prefix) and an optional YAML file, with environment
// values taking precedence.
package config
