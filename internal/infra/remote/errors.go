package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// GenericErrorMessage 無法取得遠端訊息時顯示給使用者的文字
const GenericErrorMessage = "Something went wrong. Please check your connection and try again."

var (
	// ErrNotFound 遠端回傳 404
	ErrNotFound = errors.New("remote resource not found")
	// ErrMalformedResponse 遠端回應無法解析
	ErrMalformedResponse = errors.New("malformed remote response")
)

// RemoteError 遠端服務明確拒絕的請求，Message 原樣顯示給使用者
type RemoteError struct {
	Operation string
	Status    int
	Message   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s rejected (status %d): %s", e.Operation, e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// ConnectivityError 請求沒有到達遠端服務
type ConnectivityError struct {
	Operation string
	Err       error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("remote %s unreachable: %v", e.Operation, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// IsConnectionError 判斷是否為網路層錯誤
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var connErr *ConnectivityError
	if errors.As(err, &connErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset by peer") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout")
}

// UserMessage 將任意錯誤轉成可顯示給使用者的訊息
// 遠端拒絕原樣顯示，其餘一律顯示通用訊息
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) && strings.TrimSpace(remoteErr.Message) != "" {
		return remoteErr.Message
	}

	if errors.Is(err, context.Canceled) {
		return "The request was cancelled."
	}
	return GenericErrorMessage
}
