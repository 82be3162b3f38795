package service

import (
	"io"
	"sync"
)

// Chime 高優先通知的提示音
type Chime interface {
	Ring()
}

// BellChime 寫出終端機鈴聲字元
type BellChime struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBellChime(w io.Writer) *BellChime {
	return &BellChime{w: w}
}

func (b *BellChime) Ring() {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = b.w.Write([]byte{'\a'})
}

type NopChime struct{}

func (NopChime) Ring() {}
