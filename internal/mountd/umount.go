package mountd

import (
	"github.com/kestrelfs/nfsd/internal/logger"
)

// procUmnt implements MOUNTPROC3_UMNT: dirpath -> void. Always succeeds:
// the procedure is advisory bookkeeping, and clients retransmit it freely,
// so unmounting a path that was never mounted is not an error.
func procUmnt(s *Server, ctx *Context, args []byte) ([]byte, error) {
	req, err := DecodeMountRequest(args)
	if err != nil {
		return nil, ErrGarbageArgs
	}

	host := ctx.ClientAddr
	if ip := ctx.ClientIP(); ip != nil {
		host = ip.String()
	}
	s.forgetMount(host, req.DirPath)

	logger.Info("unmount", logger.KeyPath, req.DirPath, logger.KeyClientIP, host)
	return nil, nil
}

// procUmntAll implements MOUNTPROC3_UMNTALL: void -> void. Drops every mount
// record for the calling client.
func procUmntAll(s *Server, ctx *Context, args []byte) ([]byte, error) {
	host := ctx.ClientAddr
	if ip := ctx.ClientIP(); ip != nil {
		host = ip.String()
	}
	s.forgetAllMounts(host)

	logger.Info("unmount all", logger.KeyClientIP, host)
	return nil, nil
}
