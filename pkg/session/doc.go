/*
Package session serializes updates to stored selection sessions.

A Manager wraps a ports.StateStore. Every Update runs load, apply and save for
one session id under a lock: a local per-session mutex always, and a
ports.DistributedLocker (such as the Redis locker) when several servers share
the store. LoadOrStart creates a session on first access.
*/
package session
