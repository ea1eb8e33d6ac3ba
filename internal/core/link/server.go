package link

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"

	"github.com/dep2p/go-hostdisco/internal/discovery/wire"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

// HostListProvider 为主机列表请求生成应答
type HostListProvider func(req wire.HostListRequest) wire.HostRecordList

// Server 主服务器一侧的链路服务
//
// 每条连接上读取 HostListRequest，逐个以 HostRecordList 应答，
// 直到对端关闭。
type Server struct {
	cfg      Config
	provider HostListProvider

	mu    sync.Mutex
	ln    net.Listener
	conns map[net.Conn]struct{}

	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewServer 创建主服务器链路服务
func NewServer(cfg Config, provider HostListProvider) *Server {
	if cfg.MaxFrameSize <= 0 {
		cfg.MaxFrameSize = DefaultConfig().MaxFrameSize
	}
	return &Server{
		cfg:      cfg,
		provider: provider,
		conns:    make(map[net.Conn]struct{}),
	}
}

// Listen 在 addr 上开始接受连接
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.wg.Add(1)
	go s.acceptLoop(ln)
	logger.Info("主服务器链路服务已启动", "addr", ln.Addr().String())
	return nil
}

// Addr 监听地址，未启动时为空
func (s *Server) Addr() types.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return types.Address{}
	}
	return types.AddressFromNet(s.ln.Addr())
}

func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()
	for {
		nc, err := ln.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			logger.Warn("接受连接失败", "err", err)
			continue
		}
		s.mu.Lock()
		if s.closed.Load() {
			s.mu.Unlock()
			_ = nc.Close()
			return
		}
		s.conns[nc] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()

		go s.serveConn(nc)
	}
}

func (s *Server) serveConn(nc net.Conn) {
	defer s.wg.Done()
	defer func() {
		_ = nc.Close()
		s.mu.Lock()
		delete(s.conns, nc)
		s.mu.Unlock()
	}()

	from := types.AddressFromNet(nc.RemoteAddr())
	for {
		msg, err := ReadFrame(nc, s.cfg.MaxFrameSize)
		if err != nil {
			return
		}
		req, err := wire.UnmarshalHostListRequest(msg)
		if err != nil {
			logger.Debug("无法解析主机列表请求", "from", from, "err", err)
			return
		}
		list := s.provider(req)
		if err := WriteFrame(nc, list.Marshal(), s.cfg.MaxFrameSize); err != nil {
			logger.Debug("发送主机列表失败", "from", from, "err", err)
			return
		}
		logger.Debug("已发送主机列表", "to", from, "project", req.ProjectID, "records", len(list.Records))
	}
}

// Close 停止监听并关闭所有连接
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.mu.Lock()
	ln := s.ln
	conns := make([]net.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = multierr.Append(err, ln.Close())
	}
	for _, c := range conns {
		if cerr := c.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
	}
	s.wg.Wait()
	return err
}
