package rpc

import "github.com/kestrelfs/nfsd/internal/xdr"

// UnixCredential is the decoded body of an AUTH_SYS (AUTH_UNIX) credential
// (RFC 5531 §8.3). The server treats it as advisory identity for logging and
// the NFS request context; no FSAL call takes a caller uid/gid, and this core
// does no permission enforcement of its own beyond what the FSAL backend
// applies.
type UnixCredential struct {
	Stamp       uint32
	MachineName string
	UID         uint32
	GID         uint32
	GIDs        []uint32
}

// ParseUnixAuth decodes an AUTH_SYS credential body. Called only when
// CallMessage.AuthFlavor() == AuthSys; the body of any other flavor is opaque
// to this server and is never parsed.
func ParseUnixAuth(body []byte) (*UnixCredential, error) {
	d := xdr.NewDecoder(body)

	stamp, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	machineName, err := d.String()
	if err != nil {
		return nil, err
	}
	uid, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	gid, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	n, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	gids := make([]uint32, n)
	for i := range gids {
		gids[i], err = d.Uint32()
		if err != nil {
			return nil, err
		}
	}

	return &UnixCredential{
		Stamp:       stamp,
		MachineName: machineName,
		UID:         uid,
		GID:         gid,
		GIDs:        gids,
	}, nil
}
