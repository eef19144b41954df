package probe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"strconv"

	"github.com/hamed0406/statusbot/internal/domain"
)

const (
	// protocol -1 asks the server to answer with whatever version it runs.
	slpProtocolAny   int32 = -1
	slpStateStatus   int32 = 1
	slpPacketStatus  int32 = 0x00
	slpMaxPacketSize       = 1 << 21
)

// Java queries a Java Edition server with the Server List Ping handshake.
type Java struct {
	Dialer   net.Dialer
	Protocol int32
}

func NewJava() *Java {
	return &Java{Protocol: slpProtocolAny}
}

type slpStatus struct {
	Players *struct {
		Max    *uint32 `json:"max"`
		Online *uint32 `json:"online"`
	} `json:"players"`
}

func (j *Java) Query(ctx context.Context, host string, port uint16) (domain.Players, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
	conn, err := j.Dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return domain.Players{}, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	players, err := j.exchange(conn, host, port)
	if err != nil && ctx.Err() != nil {
		return domain.Players{}, fmt.Errorf("status %s: %w", addr, ctx.Err())
	}
	if err != nil {
		return domain.Players{}, fmt.Errorf("status %s: %w", addr, err)
	}
	return players, nil
}

func (j *Java) exchange(conn net.Conn, host string, port uint16) (domain.Players, error) {
	var hs []byte
	hs = appendVarInt(hs, j.Protocol)
	hs = appendString(hs, host)
	hs = binary.BigEndian.AppendUint16(hs, port)
	hs = appendVarInt(hs, slpStateStatus)

	req := appendPacket(nil, slpPacketStatus, hs)
	req = appendPacket(req, slpPacketStatus, nil)
	if _, err := conn.Write(req); err != nil {
		return domain.Players{}, fmt.Errorf("write request: %w", err)
	}

	id, body, err := readPacket(bufio.NewReader(conn))
	if err != nil {
		return domain.Players{}, fmt.Errorf("read response: %w", err)
	}
	if id != slpPacketStatus {
		return domain.Players{}, fmt.Errorf("unexpected packet id 0x%02x", id)
	}
	raw, err := readString(bytes.NewReader(body))
	if err != nil {
		return domain.Players{}, fmt.Errorf("read status json: %w", err)
	}

	var st slpStatus
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return domain.Players{}, fmt.Errorf("decode status json: %w", err)
	}
	if st.Players == nil || st.Players.Online == nil || st.Players.Max == nil {
		return domain.Players{}, domain.ErrNoPlayerData
	}
	return domain.Players{Online: *st.Players.Online, Max: *st.Players.Max}, nil
}

// VarInts are LEB128; negative values use their 32-bit two's complement.
func appendVarInt(b []byte, v int32) []byte {
	return binary.AppendUvarint(b, uint64(uint32(v)))
}

func appendString(b []byte, s string) []byte {
	b = appendVarInt(b, int32(len(s)))
	return append(b, s...)
}

func appendPacket(b []byte, id int32, payload []byte) []byte {
	body := appendVarInt(nil, id)
	body = append(body, payload...)
	b = appendVarInt(b, int32(len(body)))
	return append(b, body...)
}

func readVarInt(r io.ByteReader) (int32, error) {
	v, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, errors.New("varint overflows 32 bits")
	}
	return int32(uint32(v)), nil
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

func readString(r byteReader) (string, error) {
	n, err := readVarInt(r)
	if err != nil {
		return "", err
	}
	if n < 0 || n > slpMaxPacketSize {
		return "", fmt.Errorf("bad string length %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readPacket(r byteReader) (int32, []byte, error) {
	n, err := readVarInt(r)
	if err != nil {
		return 0, nil, err
	}
	if n <= 0 || n > slpMaxPacketSize {
		return 0, nil, fmt.Errorf("bad packet length %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, err
	}
	br := bytes.NewReader(buf)
	id, err := readVarInt(br)
	if err != nil {
		return 0, nil, err
	}
	return id, buf[len(buf)-br.Len():], nil
}
