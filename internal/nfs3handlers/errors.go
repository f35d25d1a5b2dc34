package nfs3handlers

import (
	"errors"

	"github.com/kestrelfs/nfsd/internal/fsal"
	"github.com/kestrelfs/nfsd/internal/handledir"
	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
)

// statusFromError maps an FSAL-native error to the nfsstat3 every procedure
// reports. A resolve-handle failure
// (handledir.ErrStale) always maps to NFS3ERR_STALE regardless of what a
// handler might otherwise have done with it.
func statusFromError(err error) nfs3.Status {
	if err == nil {
		return nfs3.OK
	}
	if errors.Is(err, handledir.ErrStale) {
		return nfs3.ErrStale
	}
	var fe *fsal.Error
	if !errors.As(err, &fe) {
		return nfs3.ErrIO
	}
	switch fe.Code {
	case fsal.ErrNotFound:
		return nfs3.ErrNoEnt
	case fsal.ErrAlreadyExists, fsal.ErrExist:
		return nfs3.ErrExist
	case fsal.ErrAccessDenied:
		return nfs3.ErrAcces
	case fsal.ErrNotDirectory:
		return nfs3.ErrNotDir
	case fsal.ErrIsDirectory:
		return nfs3.ErrIsDir
	case fsal.ErrReadOnly:
		return nfs3.ErrROFS
	case fsal.ErrNoSpace:
		return nfs3.ErrNoSpc
	case fsal.ErrCrossDevice:
		return nfs3.ErrXDev
	case fsal.ErrInvalidArgument:
		return nfs3.ErrInval
	case fsal.ErrNotSupported:
		return nfs3.ErrNotSupp
	case fsal.ErrNotEmpty:
		return nfs3.ErrNotEmpty
	case fsal.ErrNameTooLong:
		return nfs3.ErrNameTooLong
	case fsal.ErrStaleHandle, fsal.ErrInvalidHandle:
		return nfs3.ErrStale
	default:
		return nfs3.ErrIO
	}
}
