package mountd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/kestrelfs/nfsd/internal/logger"
	internalxdr "github.com/kestrelfs/nfsd/internal/xdr"
	xdr "github.com/rasky/go-xdr/xdr2"
)

// MountRequest is a MNT request: the path of the directory the client wants
// to mount, as an XDR string.
type MountRequest struct {
	DirPath string
}

// DecodeMountRequest decodes and validates a MNT request's dirpath.
func DecodeMountRequest(data []byte) (*MountRequest, error) {
	req := &MountRequest{}
	if _, err := xdr.Unmarshal(bytes.NewReader(data), req); err != nil {
		return nil, fmt.Errorf("unmarshal mount request: %w", err)
	}
	if err := validateDirPath(req.DirPath); err != nil {
		return nil, err
	}
	return req, nil
}

func validateDirPath(path string) error {
	if path == "" || len(path) > MaxPathLen {
		return fmt.Errorf("dirpath length %d out of range", len(path))
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("dirpath %q is not absolute", path)
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("dirpath contains NUL")
	}
	return nil
}

// procMnt implements MOUNTPROC3_MNT: dirpath -> fhstatus3. On success the
// reply carries the export's root file handle and the auth flavors this
// server accepts; a path missing from the exports table, or a client not on
// the export's allowlist, is refused with MNT3ERR_ACCES.
func procMnt(s *Server, ctx *Context, args []byte) ([]byte, error) {
	req, err := DecodeMountRequest(args)
	if err != nil {
		return nil, ErrGarbageArgs
	}

	clientIP := ctx.ClientIP()

	entry, found := s.Exports.Lookup(req.DirPath)
	if !found {
		logger.Warn("mount denied", logger.KeyPath, req.DirPath,
			logger.KeyClientIP, ctx.ClientAddr, "reason", "not exported")
		return encodeMntStatus(ErrAcces), nil
	}
	if !s.Exports.Allowed(entry, clientIP) {
		logger.Warn("mount denied", logger.KeyPath, req.DirPath,
			logger.KeyClientIP, ctx.ClientAddr, "reason", "client not allowed")
		return encodeMntStatus(ErrAcces), nil
	}

	root, err := s.Backend.RootHandle(ctx.Context)
	if err != nil {
		logger.Error("mount failed: no root handle", logger.KeyPath, req.DirPath,
			logger.KeyError, err)
		return encodeMntStatus(ErrServerFault), nil
	}
	fh := s.Handles.Allocate(s.Backend.Path(root))

	host := ctx.ClientAddr
	if ip := clientIP; ip != nil {
		host = ip.String()
	}
	s.recordMount(host, req.DirPath)

	logger.Info("mount successful", logger.KeyPath, req.DirPath,
		logger.KeyClientIP, host, "read_only", entry.ReadOnly)

	var buf bytes.Buffer
	_ = internalxdr.WriteUint32(&buf, uint32(OK))
	if err := internalxdr.WriteOpaque(&buf, fh[:]); err != nil {
		return nil, err
	}
	_ = internalxdr.WriteUint32(&buf, uint32(len(AuthFlavors)))
	for _, flavor := range AuthFlavors {
		_ = internalxdr.WriteUint32(&buf, flavor)
	}
	return buf.Bytes(), nil
}

func encodeMntStatus(st Status) []byte {
	var buf bytes.Buffer
	_ = internalxdr.WriteUint32(&buf, uint32(st))
	return buf.Bytes()
}
