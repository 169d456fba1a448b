/*
Package ports defines the driven ports (interfaces) around the Markov engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various storage backends and definition sources.

# Key Interfaces

  - SchemeLoader: Responsible for reading scheme definitions (e.g., plain text or YAML files).
  - SessionStore: Responsible for persisting stepwise sessions.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - Applier: What driving adapters (HTTP, MCP) need from the engine.
*/
package ports
