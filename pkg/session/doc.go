/*
Package session keeps live editing sessions, one Editor per graph name.

Every operation on a session runs under that session's lock: a local mutex,
plus a distributed lock when the Manager is given a ports.DistributedLocker,
so replicas sharing a redis store never interleave edits to one graph.
*/
package session
