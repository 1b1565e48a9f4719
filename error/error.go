package error

import "errors"

var (
	// ErrConnectionClosed 对端关闭了连接，或在一帧消息中途读到EOF
	ErrConnectionClosed = errors.New("connection closed by debug adapter")
	// ErrReadTimeout 读超时
	ErrReadTimeout = errors.New("read timeout")
	// ErrTransportClosed transport已经关闭，不能继续读写
	ErrTransportClosed = errors.New("transport is closed")
	// ErrMissingContentLength 消息头缺少Content-Length
	ErrMissingContentLength = errors.New("missing Content-Length header")
	// ErrInvalidContentLength Content-Length不是合法数字
	ErrInvalidContentLength = errors.New("invalid Content-Length header")
	// ErrMalformedMessage 消息体不是合法的DAP消息
	ErrMalformedMessage = errors.New("malformed protocol message")
)
