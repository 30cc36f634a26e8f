// Package config loads bot settings from a TOML file, a dotenv file and the
// process environment, in that order of increasing precedence, and validates
// the result. BOT_TOKEN is the only required value.
package config
