// Package request 实现一次逻辑发现操作的状态跟踪
//
// Request 是封闭的两种变体之一：
//   - Single: 针对一个固定目标地址
//   - Multi: 目标集合随主服务器记录或广播响应动态增长
//
// 两者共享同一组字段（阶段、响应地址集合、首次响应标记、选项），
// 只有 Single 额外携带目标地址和 previouslyKnown。
//
// Request 只负责记账，不做 I/O；所有变更都由发现引擎在回调中驱动。
package request
