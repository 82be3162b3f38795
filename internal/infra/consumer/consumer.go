package consumer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Processer 處理一批訊息，必須是無狀態
type Processer interface {
	Process(ctx context.Context, msgs []kafka.Message) error
}

type ConsumeError struct {
	Message kafka.Message
	Err     error
}

// Consumer readMsg -> processer 處理 -> commit
// 處理失敗的訊息交給 handlerErrorfunc 後仍然 commit，不重送
type Consumer struct {
	reader    KafkaReader
	processer Processer

	retryTimes    int
	maxRetry      int
	retryInterval time.Duration
	lastErrorTime time.Time

	isRunning atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isStopped chan struct{}

	handlerErrorfunc func(ConsumeError)
}

func NewConsumer(reader KafkaReader, p Processer, handlerErrorfunc func(ConsumeError)) *Consumer {
	if handlerErrorfunc == nil {
		handlerErrorfunc = DefaultHandlerErrorfunc
	}
	return &Consumer{
		reader:           reader,
		processer:        p,
		maxRetry:         3,
		retryInterval:    100 * time.Millisecond,
		isStopped:        make(chan struct{}),
		handlerErrorfunc: handlerErrorfunc,
	}
}

func (c *Consumer) Start() {
	if !c.isRunning.CompareAndSwap(false, true) {
		return
	}

	var ctx context.Context
	ctx, c.cancel = context.WithCancel(context.Background())
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(c.isStopped)
		c.readMsg(ctx)
	}()
}

// readMsg 由單一 goroutine 執行，kafka reader 並非併發安全
// 依據錯誤類型重試，或者直接停止
func (c *Consumer) readMsg(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded) {
				log.Info().Err(err).Msg("kafka reader closed, stop consumer")
				return
			}
			if IsKafkaAuthError(err) {
				log.Error().Err(err).Msg("kafka reader auth error, stop consumer")
				return
			}

			log.Warn().Err(err).Msg("kafka fetch failed")
			if err := c.retryBackoff(); err != nil {
				log.Error().Err(err).Msg("stop consumer")
				return
			}
			continue
		}

		if err := c.processer.Process(ctx, []kafka.Message{msg}); err != nil {
			c.handlerErrorfunc(ConsumeError{Message: msg, Err: err})
		}

		commitCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		if err := c.reader.CommitMessages(commitCtx, msg); err != nil {
			log.Warn().Err(err).Int64("offset", msg.Offset).Msg("kafka commit failed")
		}
		cancel()
	}
}

func (c *Consumer) retryBackoff() error {
	if c.retryTimes >= c.maxRetry {
		return fmt.Errorf("kafka consumer retried %d times", c.retryTimes)
	}

	if c.lastErrorTime.Add(c.retryInterval).After(time.Now()) {
		c.retryTimes++
	} else {
		c.retryTimes = 1
		c.retryInterval = 100 * time.Millisecond
	}

	time.Sleep(c.retryInterval)
	c.retryInterval *= 2
	c.lastErrorTime = time.Now()
	return nil
}

// Stop 停止讀取並等待目前的訊息處理完
func (c *Consumer) Stop(timeout time.Duration) error {
	if !c.isRunning.CompareAndSwap(true, false) {
		return nil
	}
	c.cancel()

	select {
	case <-c.isStopped:
		return nil
	case <-time.After(timeout):
		return errors.New("kafka consumer close timeout")
	}
}

// C 在 consumer 結束時關閉，包含因錯誤自行停止
func (c *Consumer) C() <-chan struct{} {
	return c.isStopped
}

func IsKafkaAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, kafka.TopicAuthorizationFailed) ||
		errors.Is(err, kafka.GroupAuthorizationFailed) ||
		errors.Is(err, kafka.SASLAuthenticationFailed) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "SASL Authentication Failed") ||
		strings.Contains(errStr, "Authentication failed") ||
		strings.Contains(errStr, "SSL handshake failed") ||
		strings.Contains(errStr, "not authorized") ||
		strings.Contains(errStr, "authorization failed")
}

func DefaultHandlerErrorfunc(e ConsumeError) {
	log.Error().
		Err(e.Err).
		Str("topic", e.Message.Topic).
		Int64("offset", e.Message.Offset).
		Msg("consume message failed")
}
