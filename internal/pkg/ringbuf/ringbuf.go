// Package ringbuf provides a fixed-capacity deque ordered newest first.
package ringbuf

// Deque 固定容量，新資料放在最前面，滿了就丟掉最舊的一筆
// 非 thread safe，由呼叫端自行加鎖
type Deque[T any] struct {
	buf  []T
	head int // 最新一筆的位置
	size int
}

func New[T any](capacity int) *Deque[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Deque[T]{buf: make([]T, capacity)}
}

func (d *Deque[T]) Len() int { return d.size }

func (d *Deque[T]) Cap() int { return len(d.buf) }

// PushFront inserts v as the newest element. When the deque is full the
// oldest element is evicted and returned.
func (d *Deque[T]) PushFront(v T) (evicted T, ok bool) {
	d.head = (d.head - 1 + len(d.buf)) % len(d.buf)
	if d.size == len(d.buf) {
		evicted, ok = d.buf[d.head], true
	} else {
		d.size++
	}
	d.buf[d.head] = v
	return evicted, ok
}

// At 0 為最新
func (d *Deque[T]) At(i int) T {
	if i < 0 || i >= d.size {
		panic("ringbuf: index out of range")
	}
	return d.buf[(d.head+i)%len(d.buf)]
}

func (d *Deque[T]) Set(i int, v T) {
	if i < 0 || i >= d.size {
		panic("ringbuf: index out of range")
	}
	d.buf[(d.head+i)%len(d.buf)] = v
}

// Index returns the position of the first element matching fn, or -1.
func (d *Deque[T]) Index(fn func(T) bool) int {
	for i := 0; i < d.size; i++ {
		if fn(d.At(i)) {
			return i
		}
	}
	return -1
}

// RemoveAt 刪除第 i 筆，後面的往前補
func (d *Deque[T]) RemoveAt(i int) T {
	items := d.Slice()
	removed := items[i]
	items = append(items[:i], items[i+1:]...)
	d.reset(items)
	return removed
}

// Slice 依新到舊回傳複本
func (d *Deque[T]) Slice() []T {
	out := make([]T, d.size)
	for i := 0; i < d.size; i++ {
		out[i] = d.At(i)
	}
	return out
}

// Replace 以 items 取代內容，items 需為新到舊，超過容量的舊資料會被截掉
func (d *Deque[T]) Replace(items []T) {
	if len(items) > len(d.buf) {
		items = items[:len(d.buf)]
	}
	d.reset(items)
}

func (d *Deque[T]) Clear() {
	d.reset(nil)
}

func (d *Deque[T]) reset(items []T) {
	var zero T
	for i := range d.buf {
		d.buf[i] = zero
	}
	d.head = 0
	d.size = len(items)
	copy(d.buf, items)
}
