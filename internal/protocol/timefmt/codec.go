package timefmt

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// MaxMessageSize 单条消息的最大字节数
const MaxMessageSize = 16 * 1024

// Request 时间格式化请求
type Request struct {
	// Format strftime 格式
	Format string `cbor:"1,keyasint"`
}

// Response 时间格式化响应
//
// Error 非空时 Data 无意义。
type Response struct {
	Data  string `cbor:"1,keyasint"`
	Error string `cbor:"2,keyasint,omitempty"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("timefmt: cbor encoder mode: %v", err))
	}

	decMode, err = cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		IndefLength:      cbor.IndefLengthForbidden,
		MaxArrayElements: 16,
		MaxMapPairs:      16,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("timefmt: cbor decoder mode: %v", err))
	}
}

// writeMessage 编码 v 并写入 w，返回写入的字节数
func writeMessage(w io.Writer, v any) (int, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode: %w", err)
	}
	if len(data) > MaxMessageSize {
		return 0, fmt.Errorf("%w: %d bytes exceeds limit", ErrInvalidMessage, len(data))
	}
	return w.Write(data)
}

// readMessage 从 r 读取一条消息到 v，返回读取的字节数
//
// 发送方写完一条消息后关闭发送方向，因此读到 EOF 即为消息结束。
func readMessage(r io.Reader, v any) (int, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxMessageSize+1))
	if err != nil {
		return len(data), err
	}
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty", ErrInvalidMessage)
	}
	if len(data) > MaxMessageSize {
		return len(data), fmt.Errorf("%w: exceeds %d bytes", ErrInvalidMessage, MaxMessageSize)
	}
	if err := decMode.Unmarshal(data, v); err != nil {
		return len(data), fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	return len(data), nil
}
