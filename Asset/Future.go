package Asset

import (
	"context"
	"sync"
)

// Future 一次性异步加载的资源, 所有等待者共享同一个结果
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

// Go 在后台执行 fn 并返回对应的 Future, fn 只会执行一次
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		v, err := fn(ctx)
		f.resolve(v, err)
	}()
	return f
}

// Resolved 已完成的 Future
func Resolved[T any](v T) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	f.resolve(v, nil)
	return f
}

// Failed 已失败的 Future
func Failed[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	var zero T
	f.resolve(zero, err)
	return f
}

func (f *Future[T]) resolve(v T, err error) {
	f.once.Do(func() {
		f.value = v
		f.err = err
		close(f.done)
	})
}

// Done 加载结束时关闭
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await 等待加载结果; ctx 取消只影响当前等待者, 不会中断加载本身
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
