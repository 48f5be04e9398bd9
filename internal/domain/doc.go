// Package domain holds the core types of the gateway (users, sessions,
// todos, identity) and the repository interfaces implemented by the
// postgres and redis adapters. It has no dependency on HTTP or storage.
package domain
