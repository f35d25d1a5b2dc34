// Package nfs3 holds the structural wire types of the NFSv3 protocol (RFC
// 1813): fattr3, the boolean-discriminated post_op_attr/pre_op_attr/wcc_data
// wrappers, directory entries, and the nfsstat3 status enumeration.
//
// These types and their Encode/Decode methods are hand-written rather than
// generated: post_op_attr and wcc_data are unions whose discriminant is a
// bare boolean rather than a tagged enum, a shape most XDR code generators
// get wrong. Centralizing them here means every procedure handler in
// internal/nfs3handlers builds its response from the same two helpers
// (EncodePostOpAttr, EncodeWccData) instead of reimplementing the union.
package nfs3
