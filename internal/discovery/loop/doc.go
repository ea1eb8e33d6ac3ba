// Package loop 提供发现引擎的单线程事件循环
//
// 发现引擎不是并发安全的。链路回调、ping 回调、时钟节拍和调用方操作
// 都通过 Loop 投递到同一个 goroutine 上顺序执行。
//
// Post 永不阻塞，可以在循环内部调用；Do 等待函数执行完毕，
// 只能在循环之外调用。
package loop
