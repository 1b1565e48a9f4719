package inspector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/go-dap"

	e "github.com/fansqz/dap-inspector/error"
)

// Transport 在字节流上读写一条完整的DAP消息，不包含任何协议语义
type Transport interface {
	// ReadMessage 阻塞读取下一条完整的DAP消息
	ReadMessage() (dap.Message, error)
	// WriteMessage 写出一条DAP消息
	WriteMessage(msg dap.Message) error
	// Close 关闭连接，重复调用是安全的
	Close() error
}

// connTransport 基于net.Conn实现的Transport
// 读端自己解析消息头：调试器都按\r\n结尾发送，但也兼容只用\n结尾的非标准实现；
// 消息体按Content-Length精确读取，多读一个字节都会破坏流上的下一帧
type connTransport struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	// readTimeout 每次读消息前设置到连接上的读超时，为0表示不限制
	readTimeout time.Duration

	mutex  sync.Mutex
	closed bool
}

// DialTCP 连接到调试器监听的地址
func DialTCP(ctx context.Context, address string, readTimeout time.Duration) (Transport, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s fail: %w", address, err)
	}
	return NewConnTransport(conn, readTimeout), nil
}

// NewConnTransport 基于已有连接创建Transport
func NewConnTransport(conn net.Conn, readTimeout time.Duration) Transport {
	return &connTransport{
		conn:        conn,
		reader:      bufio.NewReader(conn),
		writer:      bufio.NewWriter(conn),
		readTimeout: readTimeout,
	}
}

func (t *connTransport) ReadMessage() (dap.Message, error) {
	if t.isClosed() {
		return nil, e.ErrTransportClosed
	}
	if t.readTimeout > 0 {
		_ = t.conn.SetReadDeadline(time.Now().Add(t.readTimeout))
	}

	length, err := t.readHeaders()
	if err != nil {
		return nil, err
	}

	payload := make([]byte, length)
	if _, err = io.ReadFull(t.reader, payload); err != nil {
		return nil, wrapReadError(err)
	}

	msg, err := dap.DecodeProtocolMessage(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", e.ErrMalformedMessage, err)
	}
	return msg, nil
}

// readHeaders 逐行读取消息头直到空行，返回Content-Length
func (t *connTransport) readHeaders() (int, error) {
	length := -1
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return 0, wrapReadError(err)
		}
		// 标准结尾是\r\n，这里只要求\n，多出的\r去掉即可
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "Content-Length") {
			length, err = strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return 0, fmt.Errorf("%w: %q", e.ErrInvalidContentLength, strings.TrimSpace(value))
			}
		}
	}
	if length < 0 {
		return 0, e.ErrMissingContentLength
	}
	return length, nil
}

func (t *connTransport) WriteMessage(msg dap.Message) error {
	if t.isClosed() {
		return e.ErrTransportClosed
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if err := dap.WriteProtocolMessage(t.writer, msg); err != nil {
		return fmt.Errorf("write message fail: %w", err)
	}
	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("flush message fail: %w", err)
	}
	return nil
}

func (t *connTransport) Close() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Close()
}

func (t *connTransport) isClosed() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.closed
}

// wrapReadError 把底层读错误映射成哨兵错误
// 对端关闭、EOF、读超时都不能当成一次空读静默返回
func wrapReadError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", e.ErrReadTimeout, err)
	}
	return fmt.Errorf("%w: %v", e.ErrConnectionClosed, err)
}
