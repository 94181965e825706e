// Package config loads server settings from defaults, an optional YAML file,
// a .env file and TASKS_* environment variables, then validates them.
package config
