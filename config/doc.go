// Package config loads restpipe settings from defaults, an optional YAML
// file and RESTPIPE_ environment variables, in increasing priority.
//
// Keys are lower case and dot separated; an environment variable maps to
// a key by dropping the prefix, lowering it and turning underscores into
// dots, so RESTPIPE_CACHE_TTL sets cache.ttl. Header values and the redis
// password may hold ${VAR} references and secretref:<provider>:<ref>
// values, which Load resolves.
package config
