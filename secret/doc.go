// Package secret resolves credentials referenced from configuration.
//
// Configuration values pass through strict environment expansion
// (see ExpandEnvStrict) and then through secret references of the form
// "secretref:<provider>:<ref>", either as the whole value or inline:
//
//	secretref:env:API_KEY
//	Bearer secretref:file:api-key
//
// Two providers are built in: "env" reads environment variables and
// "file" reads files such as mounted container secrets. Registry maps
// provider names to factories so configuration can enable them by name.
package secret
