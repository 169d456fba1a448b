/*
Package session drives stepwise rewrite sessions that outlive a single call.

A Manager loads a session, performs one step with the engine and saves it
again, holding a per-session lock for the whole read-modify-write. With a
ports.DistributedLocker the lock also spans replicas sharing one store.
*/
package session
