package cache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// 저장 값 첫 바이트: 압축 여부 표시
const (
	markerRaw  byte = 0x00
	markerZstd byte = 0x01

	// compressThreshold 이상인 값만 압축한다.
	compressThreshold = 1024
)

var errCorruptValue = errors.New("corrupt cached value")

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdOnce    sync.Once
	errZstdInit error
)

func initZstd() error {
	zstdOnce.Do(func() {
		var err error
		zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			errZstdInit = fmt.Errorf("create zstd encoder: %w", err)
			return
		}
		zstdDecoder, err = zstd.NewReader(nil)
		if err != nil {
			errZstdInit = fmt.Errorf("create zstd decoder: %w", err)
		}
	})
	return errZstdInit
}

// encodeValue: 표시 바이트를 붙이고 큰 값은 zstd 로 압축합니다.
func encodeValue(src []byte) ([]byte, error) {
	if len(src) < compressThreshold {
		out := make([]byte, 0, len(src)+1)
		out = append(out, markerRaw)
		return append(out, src...), nil
	}
	if err := initZstd(); err != nil {
		return nil, err
	}
	dst := make([]byte, 1, len(src)/2+1)
	dst[0] = markerZstd
	return zstdEncoder.EncodeAll(src, dst), nil
}

func decodeValue(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, errCorruptValue
	}
	switch src[0] {
	case markerRaw:
		return src[1:], nil
	case markerZstd:
		if err := initZstd(); err != nil {
			return nil, err
		}
		decoded, err := zstdDecoder.DecodeAll(src[1:], nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: marker 0x%02x", errCorruptValue, src[0])
	}
}
