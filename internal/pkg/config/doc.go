// Package config exposes typed configuration lookups.
//
// The Viper implementation reads a YAML file, reloads it when it changes and
// lets DASHBOARD_* environment variables override any key.
package config
