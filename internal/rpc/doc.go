// Package rpc implements the ONC-RPC v2 transport this server speaks to every
// client: RFC 5531 TCP record marking (§11) and the CALL/REPLY envelope
// (§9, §14). It knows the shape of a CALL and how to build a REPLY, but
// nothing about Portmap, MOUNT, or NFS procedure semantics -- those live in
// internal/portmap, internal/mountd, and internal/nfs3handlers, which call into this
// package to read a request's envelope and write a response's.
package rpc
