// Package config holds formedit's runtime configuration.
//
// Values are layered, lowest precedence first:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file, chosen by extension
//  3. Environment variables with the FORMEDIT_ prefix
//
// Settings use dotted paths: history.capacity, logging.level,
// script.operationLimit and script.timeout.
package config
