package hoststore

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/go-hostdisco/pkg/lib/log"
	"github.com/dep2p/go-hostdisco/pkg/types"
)

var logger = log.Logger("discovery/hoststore")

// EvictFunc 记录因容量被淘汰时的回调
type EvictFunc func(addr types.Address)

// Store 主机记录缓存
type Store struct {
	network types.Network
	cache   *lru.Cache[types.Address, types.HostRecord]
	onEvict EvictFunc

	// removing 为 true 时 lru 回调来自 Remove/Clear，不算容量淘汰；只由写者访问
	removing bool
}

// New 创建主机记录缓存
//
// onEvict 可以为 nil；只有容量淘汰会触发它，Remove 不会。
func New(network types.Network, capacity int, onEvict EvictFunc) (*Store, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	s := &Store{network: network, onEvict: onEvict}
	cache, err := lru.NewWithEvict[types.Address, types.HostRecord](capacity, s.evicted)
	if err != nil {
		return nil, err
	}
	s.cache = cache
	return s, nil
}

// evicted 由 lru 在容量淘汰时调用
func (s *Store) evicted(addr types.Address, _ types.HostRecord) {
	if s.removing {
		return
	}
	logger.Debug("主机记录被淘汰", "network", s.network, "addr", addr)
	if s.onEvict != nil {
		s.onEvict(addr)
	}
}

// Network 缓存所属网络
func (s *Store) Network() types.Network {
	return s.network
}

// Has 地址是否已缓存
func (s *Store) Has(addr types.Address) bool {
	return s.cache.Contains(addr)
}

// Get 获取记录快照
//
// 读取不会改变淘汰顺序。
func (s *Store) Get(addr types.Address) (types.HostRecord, bool) {
	rec, ok := s.cache.Peek(addr)
	if !ok {
		return types.HostRecord{}, false
	}
	return rec.Clone(), true
}

// Upsert 插入或更新记录
//
// 已有记录按 RespondingHostData.Merge 合并，空的信息块不会清除旧值。
// 返回 true 表示是新插入的地址。
func (s *Store) Upsert(rec types.HostRecord) (bool, error) {
	if rec.Address.IsEmpty() {
		return false, ErrEmptyAddress
	}
	old, ok := s.cache.Peek(rec.Address)
	if ok {
		rec.Data = old.Data.Merge(rec.Data)
	} else {
		rec = rec.Clone()
	}
	s.cache.Add(rec.Address, rec)
	return !ok, nil
}

// Remove 移除记录，返回是否存在
func (s *Store) Remove(addr types.Address) bool {
	s.removing = true
	defer func() { s.removing = false }()
	return s.cache.Remove(addr)
}

// Addresses 返回所有已缓存地址（排序）
func (s *Store) Addresses() []types.Address {
	addrs := s.cache.Keys()
	types.SortAddresses(addrs)
	return addrs
}

// Snapshot 返回所有记录的快照（按地址排序）
func (s *Store) Snapshot() []types.HostRecord {
	vals := s.cache.Values()
	out := make([]types.HostRecord, 0, len(vals))
	for _, rec := range vals {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address.Less(out[j].Address) })
	return out
}

// Len 记录数
func (s *Store) Len() int {
	return s.cache.Len()
}

// Clear 清空缓存
func (s *Store) Clear() {
	s.removing = true
	defer func() { s.removing = false }()
	s.cache.Purge()
}
