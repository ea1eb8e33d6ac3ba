// Package hoststore 实现按地址索引的主机记录缓存
//
// Store 的生命周期独立于任何一次刷新请求：记录在多次刷新之间保留，
// 避免重复查询未变化的主机。容量有上限，超出时淘汰最久未提交的记录。
//
// 写入只发生在发现引擎的 flush 阶段（单写者）；读取可以来自任意 goroutine，
// 返回的记录都是快照，调用方可以安全持有。
package hoststore
