// Package config loads typed configuration from the environment.
//
// A .env file in the working directory is read once, on the first load.
// Struct fields are filled by caarlos0/env from their env and envDefault
// tags; nested structs are parsed recursively, which is how edgekit.Config
// collects the server, pipeline, cache and logger sections in one call:
//
//	var cfg edgekit.Config
//	config.MustLoad(&cfg)
//
// Load caches the result per type, so later calls for the same type are
// cheap and return the first value even if the environment changed. Use
// LoadFresh to bypass the cache, for example in tests that set variables.
package config
