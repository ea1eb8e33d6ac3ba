package ping

import "sync"

// dispatcher 按入队顺序在单个 goroutine 上执行回调
type dispatcher struct {
	mu     sync.Mutex
	queue  []func()
	signal chan struct{}
}

func newDispatcher() *dispatcher {
	return &dispatcher{signal: make(chan struct{}, 1)}
}

// push 入队，不阻塞
func (d *dispatcher) push(fn func()) {
	d.mu.Lock()
	d.queue = append(d.queue, fn)
	d.mu.Unlock()

	select {
	case d.signal <- struct{}{}:
	default:
	}
}

// run 执行回调直到 done 关闭；关闭后丢弃剩余回调
func (d *dispatcher) run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-d.signal:
		}
		for {
			d.mu.Lock()
			if len(d.queue) == 0 {
				d.mu.Unlock()
				break
			}
			fn := d.queue[0]
			d.queue[0] = nil
			d.queue = d.queue[1:]
			d.mu.Unlock()

			select {
			case <-done:
				return
			default:
			}
			fn()
		}
	}
}
